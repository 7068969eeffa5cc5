package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Context represents a flexible key-value store for additional log data, stored as JSON in the database.
// It implements the sql.Scanner and driver.Valuer interfaces to handle database serialization.
type Context map[string]any

// Scan implements the sql.Scanner interface, allowing Context to be read from the database.
func (c *Context) Scan(value interface{}) error {
	if value == nil {
		*c = make(Context)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		json.Unmarshal(v, &c)
		return nil
	case string:
		json.Unmarshal([]byte(v), &c)
		return nil
	default:
		return fmt.Errorf("unsupported type %T", v)
	}
}

// Value implements the driver.Valuer interface, allowing Context to be written to the database.
func (c Context) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "{}", nil
	}
	return json.Marshal(c)
}
