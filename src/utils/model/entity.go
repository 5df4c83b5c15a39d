package model

import (
	"errors"
	"time"
)

var ErrValidation = errors.New("validation failed")

// Entity is a record kept by the repositories
type Entity interface {
	GetId() string
	SetId(id string)

	// Fills server side defaults before the first insert
	SetDefaults(now time.Time)

	// Checks required fields
	Validate() error

	// Maps JSON field names that may be used in filters to column names
	Fields() map[string]string
}
