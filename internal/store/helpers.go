package store

import (
	"database/sql"
	"encoding/json"
	"iter"
)

// insertPairs inserts an ordered key/value sequence with its position as
// the first bound argument.
func insertPairs(tx *sql.Tx, query string, pairs iter.Seq2[string, string]) error {
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	i := 0
	for k, v := range pairs {
		if _, err := stmt.Exec(i, k, v); err != nil {
			return err
		}
		i++
	}
	return nil
}

// marshalList converts []string to JSON text for storage.
func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// unmarshalList converts JSON text back to []string.
func unmarshalList(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var items []string
	_ = json.Unmarshal([]byte(s), &items)
	if len(items) == 0 {
		return nil
	}
	return items
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
