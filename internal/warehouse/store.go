// Package warehouse reads reference cost and region tables from the data
// warehouse the settings validator cross-checks against. The warehouse is
// usually a local sqlite file but may also be a mysql-compatible server.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for server-backed warehouses.
	_ "modernc.org/sqlite"             // Pure-Go SQLite driver.
)

// Store wraps a warehouse connection and exposes the reference queries the
// validator needs. It satisfies settings.ReferenceStore.
type Store struct {
	db *sql.DB
}

// Open connects to the warehouse identified by dsn. A dsn with a mysql://
// scheme or a tcp() address opens through the mysql driver; anything else,
// including sqlite:/// connection strings and bare file paths, opens as a
// sqlite database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source := splitDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open database: %w", err)
	}

	if driver == "sqlite" {
		// One connection avoids SQLITE_BUSY contention between pooled
		// connections that each need their own PRAGMA setup.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("warehouse: set busy timeout: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("warehouse: connect: %w", err)
	}
	return &Store{db: db}, nil
}

func splitDSN(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.Contains(dsn, "@tcp("):
		return "mysql", dsn
	case strings.HasPrefix(dsn, "sqlite:"):
		// sqlite:///rel/path is relative, sqlite:////abs/path is absolute.
		source = strings.TrimPrefix(dsn, "sqlite:")
		return "sqlite", strings.TrimPrefix(source, "///")
	default:
		return "sqlite", dsn
	}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DistinctCostCases returns the distinct cost-case labels available for one
// year of cost projection data.
func (s *Store) DistinctCostCases(ctx context.Context, atbYear int) ([]string, error) {
	const q = `SELECT DISTINCT cost_case FROM technology_costs_nrelatb WHERE atb_year = ?`
	rows, err := s.db.QueryContext(ctx, q, atbYear)
	if err != nil {
		return nil, fmt.Errorf("warehouse: query cost cases for %d: %w", atbYear, err)
	}
	defer rows.Close()

	var cases []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("warehouse: scan cost case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse: read cost cases: %w", err)
	}
	return cases, nil
}

// TechnologyExists reports whether a (technology, tech_detail) pair has any
// rows in the reference cost table.
func (s *Store) TechnologyExists(ctx context.Context, technology, techDetail string) (bool, error) {
	const q = `SELECT COUNT(*) FROM technology_costs_nrelatb WHERE technology = ? AND tech_detail = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, technology, techDetail).Scan(&n); err != nil {
		return false, fmt.Errorf("warehouse: query technology %s %s: %w", technology, techDetail, err)
	}
	return n > 0, nil
}

// RegionIDs returns the full list of base region identifiers.
func (s *Store) RegionIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT region_id_epaipm FROM regions_entity_epaipm`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("warehouse: query regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("warehouse: scan region: %w", err)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse: read regions: %w", err)
	}
	return regions, nil
}
