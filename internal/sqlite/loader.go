package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// Rebuild replaces the index contents with records. Loading is
// transactional: either every record is indexed or the previous contents
// remain.
func (ix *Index) Rebuild(records []*types.Record) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	// attributes rows go with their records through ON DELETE CASCADE.
	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	if err := insertRecords(tx, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild transaction: %w", err)
	}
	return nil
}

// insertRecords writes one records row and one attributes row per attribute.
func insertRecords(tx *sql.Tx, records []*types.Record) error {
	recStmt, err := tx.Prepare(
		"INSERT INTO records (record_key, kind, record_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert for records: %w", err)
	}
	defer recStmt.Close()

	attrStmt, err := tx.Prepare("INSERT INTO attributes (record_key, name, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert for attributes: %w", err)
	}
	defer attrStmt.Close()

	for _, rec := range records {
		_, err := recStmt.Exec(
			rec.Key(),
			string(rec.Kind()),
			rec.ID(),
			rec.CreatedAt().Format(types.TimeLayout),
			rec.UpdatedAt().Format(types.TimeLayout),
		)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", rec.Key(), err)
		}
		for name, v := range rec.Attributes() {
			if _, err := attrStmt.Exec(rec.Key(), name, renderValue(v)); err != nil {
				return fmt.Errorf("indexing %s.%s: %w", rec.Key(), name, err)
			}
		}
	}
	return nil
}

// renderValue gives every attribute value a canonical text form so that
// equality in SQL matches equality of the parsed values.
func renderValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		// Non-scalar values retained from the data file.
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
