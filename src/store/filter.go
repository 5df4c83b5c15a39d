package store

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type Order struct {
	Field      string
	Descending bool
}

// Filter selects records by their JSON field names.
// Nil filter selects everything.
type Filter struct {
	// Field equals value
	Where map[string]any

	// Field matches a LIKE pattern, % matches any string, _ matches one character
	Like map[string]string

	Order  []Order
	Limit  int
	Offset int
}

func NewFilter() *Filter {
	return &Filter{}
}

func (self *Filter) WithWhere(field string, value any) *Filter {
	if self.Where == nil {
		self.Where = make(map[string]any)
	}
	self.Where[field] = value
	return self
}

func (self *Filter) WithLike(field string, pattern string) *Filter {
	if self.Like == nil {
		self.Like = make(map[string]string)
	}
	self.Like[field] = pattern
	return self
}

func (self *Filter) WithOrder(field string, descending bool) *Filter {
	self.Order = append(self.Order, Order{Field: field, Descending: descending})
	return self
}

func (self *Filter) WithLimit(v int) *Filter {
	self.Limit = v
	return self
}

func (self *Filter) WithOffset(v int) *Filter {
	self.Offset = v
	return self
}

// Copy that may be modified without affecting the original
func (self *Filter) Clone() *Filter {
	out := NewFilter()
	if self == nil {
		return out
	}
	for field, value := range self.Where {
		out.WithWhere(field, value)
	}
	for field, pattern := range self.Like {
		out.WithLike(field, pattern)
	}
	out.Order = append(out.Order, self.Order...)
	out.Limit = self.Limit
	out.Offset = self.Offset
	return out
}

// Checks all fields are allowed and maps them to columns
func (self *Filter) columns(fields map[string]string) (out map[string]string, err error) {
	out = make(map[string]string)
	if self == nil {
		return
	}

	names := make([]string, 0, len(self.Where)+len(self.Like)+len(self.Order))
	for field := range self.Where {
		names = append(names, field)
	}
	for field := range self.Like {
		names = append(names, field)
	}
	for _, order := range self.Order {
		names = append(names, order.Field)
	}

	for _, field := range names {
		column, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, field)
		}
		out[field] = column
	}

	if self.Limit < 0 || self.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidFilter)
	}
	return
}

// Keys of a map in a stable order
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// EscapeLike makes a pattern matching exactly the given string
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
