package settings

import (
	"fmt"
	"sort"
)

// Merge combines override into base, recursing into nested mappings and
// replacing scalar or sequence leaves wholesale. Sequences are never merged
// element-wise. base is mutated in place and returned; callers that need to
// preserve the original must pass a DeepCopy. The override argument is
// never mutated, and values copied out of it are deep copies so the merged
// document shares no mutable state with it.
func Merge(base Document, override Document) Document {
	if base == nil {
		base = make(Document, len(override))
	}
	for k, v := range override {
		ov, ok := AsDocument(v)
		if !ok {
			base[k] = copyValue(v)
			continue
		}
		bv, ok := AsDocument(base[k])
		if !ok {
			// Malformed nesting: the base holds a scalar where the override
			// holds a mapping. Start fresh from the override.
			bv = make(Document, len(ov))
		}
		base[k] = Merge(bv, ov)
	}
	return base
}

// DeepCopy returns a copy of the document sharing no mutable state with the
// original.
func DeepCopy(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case Document:
		return DeepCopy(val)
	case map[string]any:
		return map[string]any(DeepCopy(Document(val)))
	case map[any]any:
		out := make(map[any]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []int:
		out := make([]int, len(val))
		copy(out, val)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = map[string]any(DeepCopy(Document(item)))
		}
		return out
	default:
		return v
	}
}

// Flatten returns the sorted dot-path keys of every leaf in the document.
// A leaf is any value that is not itself a mapping; an empty nested mapping
// is a leaf at its own path.
func Flatten(doc Document) []string {
	var keys []string
	flattenInto(doc, "", &keys)
	sort.Strings(keys)
	return keys
}

func flattenInto(doc Document, prefix string, keys *[]string) {
	for k, v := range doc {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := AsDocument(v); ok && len(nested) > 0 {
			flattenInto(nested, path, keys)
			continue
		}
		*keys = append(*keys, path)
	}
}

// normalizeValue rewrites decoded YAML/TOML values so that every mapping in
// the tree is a map[string]any. yaml.v3 produces map[string]any only when
// all keys are strings; integer keys (planning years) otherwise surface as
// map[any]any.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeValue(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	default:
		return v
	}
}
