package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/jackc/pgtype"
)

// JSON is a free-form document kept in a jsonb column.
// Empty value means the document is absent.
type JSON json.RawMessage

func NewJSON(v any) (out JSON, err error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return
	}
	return JSON(buf), nil
}

func (self JSON) IsPresent() bool {
	return len(self) > 0 && string(self) != "null"
}

func (self JSON) MarshalJSON() ([]byte, error) {
	if len(self) == 0 {
		return []byte("null"), nil
	}
	return self, nil
}

func (self *JSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*self = nil
		return nil
	}
	*self = append(JSON(nil), data...)
	return nil
}

func (self JSON) Value() (driver.Value, error) {
	if !self.IsPresent() {
		return nil, nil
	}
	return pgtype.JSONB{Bytes: self, Status: pgtype.Present}.Value()
}

func (self *JSON) Scan(src any) (err error) {
	var value pgtype.JSONB
	err = value.Scan(src)
	if err != nil {
		return
	}
	if value.Status != pgtype.Present {
		*self = nil
		return
	}
	*self = JSON(value.Bytes)
	return
}

// Stores any JSON-serializable value in a jsonb column
func jsonbValue(v any) (driver.Value, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return pgtype.JSONB{Bytes: buf, Status: pgtype.Present}.Value()
}

// Reads a jsonb column into a JSON-deserializable value, false if the column is NULL
func jsonbScan(src any, v any) (ok bool, err error) {
	var value pgtype.JSONB
	err = value.Scan(src)
	if err != nil || value.Status != pgtype.Present {
		return
	}
	return true, json.Unmarshal(value.Bytes, v)
}
