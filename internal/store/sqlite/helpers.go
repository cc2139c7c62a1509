package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// marshalIDs stores a list order; an absent order is stored as [].
func marshalIDs(ids []diagram.ConnID) (string, error) {
	if ids == nil {
		ids = []diagram.ConnID{}
	}
	return marshalJSON(ids)
}

// unmarshalIDs is the inverse of marshalIDs; [] reads back as nil.
func unmarshalIDs(data []byte) ([]diagram.ConnID, error) {
	var ids []diagram.ConnID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
