package settings

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// identifierFields are the entry fields that contribute to an identity key.
// Any other field is carried along but does not distinguish one clustering
// configuration from another.
var identifierFields = map[string]bool{
	"technology":   true,
	"pref_site":    true,
	"turbine_type": true,
}

// IdentityKey derives the string that uniquely identifies a clustering
// configuration: the values of the present identifier fields, sorted by
// field name and joined with underscores.
func IdentityKey(entry Document) string {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if !identifierFields[k] {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		fmt.Fprint(&b, entry[k])
	}
	return b.String()
}

// ExpandAllRegions rewrites wildcard "all" region tags in the document's
// renewables_clusters list into one concrete entry per model region that is
// not already explicitly tagged for the same identity key. The document is
// mutated in place. After expansion no wildcard entries remain, so a second
// pass is a no-op.
//
// A wildcard entry acts as a template for its identity key; when several
// wildcard entries share a key, the last one wins and a warning is written
// to logger. Explicitly tagged regions are never overwritten by the
// expansion.
func ExpandAllRegions(doc Document, logger io.Writer) error {
	if logger == nil {
		logger = io.Discard
	}

	entries := clusterEntries(doc["renewables_clusters"])
	if len(entries) == 0 {
		return nil
	}

	modelRegions := asStringSlice(doc["model_regions"])
	if len(modelRegions) == 0 {
		return fmt.Errorf("%w: model_regions is required to expand 'all' region tags", ErrMissingConfiguration)
	}

	templates := make(map[string]Document)
	var templateOrder []string
	claimed := make(map[string]map[string]bool)
	var kept []map[string]any

	for _, entry := range entries {
		regionVal, ok := entry["region"]
		if !ok {
			return fmt.Errorf("%w: renewables cluster entry missing 'region' tag", ErrMissingField)
		}
		region := fmt.Sprint(regionVal)
		key := IdentityKey(entry)

		if strings.EqualFold(region, "all") {
			if _, ok := entry["technology"]; !ok {
				return fmt.Errorf("%w: renewables cluster entry for region %q missing 'technology' tag", ErrMissingField, region)
			}
			if _, dup := templates[key]; dup {
				fmt.Fprintf(logger, "warning: multiple 'all' tags applied to technology %s; only the last one will be used\n", key)
			} else {
				templateOrder = append(templateOrder, key)
			}
			templates[key] = entry
			continue
		}

		if claimed[key] == nil {
			claimed[key] = make(map[string]bool)
		}
		claimed[key][region] = true
		kept = append(kept, entry)
	}

	for _, key := range templateOrder {
		for _, region := range modelRegions {
			if claimed[key][region] {
				continue
			}
			cp := map[string]any(DeepCopy(templates[key]))
			cp["region"] = region
			kept = append(kept, cp)
		}
	}

	doc["renewables_clusters"] = kept
	return nil
}

// clusterEntries coerces the raw renewables_clusters value into a uniform
// slice of documents, tolerating the shapes produced by YAML decoding,
// Params round trips, and hand-built test fixtures.
func clusterEntries(v any) []Document {
	var out []Document
	switch list := v.(type) {
	case []Document:
		return list
	case []map[string]any:
		for _, m := range list {
			out = append(out, Document(m))
		}
	case []any:
		for _, item := range list {
			if d, ok := AsDocument(item); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

func asStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

// ReverseRegionMap reverses a mapping of model region to member base
// regions so each base region maps to its model region.
func ReverseRegionMap(aggregations map[string][]string) map[string]string {
	rev := make(map[string]string)
	for model, members := range aggregations {
		for _, base := range members {
			rev[base] = model
		}
	}
	return rev
}

// RegionsToKeep lists every base region used by the model, either directly
// as a model region or as a member of a user-defined aggregation, together
// with the reversed aggregation map. Aggregate names themselves are
// excluded from the returned list.
func RegionsToKeep(modelRegions []string, aggregations map[string][]string) ([]string, map[string]string) {
	aggMap := ReverseRegionMap(aggregations)

	aggregateNames := make(map[string]bool, len(aggMap))
	for _, model := range aggMap {
		aggregateNames[model] = true
	}

	bases := make([]string, 0, len(aggMap))
	for base := range aggMap {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	var keep []string
	for _, r := range append(append([]string{}, modelRegions...), bases...) {
		if !aggregateNames[r] {
			keep = append(keep, r)
		}
	}
	return keep, aggMap
}
