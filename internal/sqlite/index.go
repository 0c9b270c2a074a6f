// Package sqlite implements the query index behind the console's count and
// find commands. The data file stays the source of truth: the index lives in
// an in-memory SQLite database and is rebuilt from the registry before each
// query.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// Index answers attribute queries over a snapshot of records.
type Index struct {
	db *sql.DB
}

// Open creates an empty in-memory index with its schema in place.
func Open() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Index{db: db}, nil
}

// Close releases the database. Close is idempotent.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	return err
}

// Count returns the number of indexed records of kind.
func (ix *Index) Count(kind types.Kind) (int, error) {
	var n int
	err := ix.db.QueryRow("SELECT COUNT(*) FROM records WHERE kind = ?", string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", kind, err)
	}
	return n, nil
}

// Find returns the composite keys of records of kind whose attribute name
// equals raw, in key order. raw is read the way the console reads update
// values, so "3" matches an integer 3 and "37.0" matches a float 37.
func (ix *Index) Find(kind types.Kind, name, raw string) ([]string, error) {
	v, err := types.ParseAttribute(kind, name, raw)
	if err != nil {
		return nil, err
	}
	rows, err := ix.db.Query(`SELECT r.record_key FROM records r
JOIN attributes a ON a.record_key = r.record_key
WHERE r.kind = ? AND a.name = ? AND a.value = ?
ORDER BY r.record_key`, string(kind), name, renderValue(v))
	if err != nil {
		return nil, fmt.Errorf("querying %s.%s: %w", kind, name, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning record key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
