package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pipeos/pipes/src/store"
)

// Filter passed as JSON in the "filter" query param, e.g.
// {"where":{"name":"Token","uri":{"like":"ipfs://%"}},"order":"timestamp DESC","limit":10,"skip":20}
type Filter struct {
	Where  map[string]json.RawMessage `json:"where"`
	Order  json.RawMessage            `json:"order"`
	Limit  int                        `json:"limit"`
	Skip   int                        `json:"skip"`
	Offset int                        `json:"offset"`
}

// Operator object allowed as a where value
type condition struct {
	Like *string `json:"like"`
}

// ParseFilter converts the "filter" query param. Empty param selects everything.
func ParseFilter(raw string) (out *store.Filter, err error) {
	out = store.NewFilter()
	if raw == "" {
		return
	}

	var in Filter
	err = json.Unmarshal([]byte(raw), &in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalidFilter, err.Error())
	}

	err = where(out, in.Where)
	if err != nil {
		return nil, err
	}

	err = order(out, in.Order)
	if err != nil {
		return nil, err
	}

	out.WithLimit(in.Limit).WithOffset(in.Skip)
	if in.Offset != 0 {
		out.WithOffset(in.Offset)
	}
	return
}

// ParseWhere converts the "where" query param, a bare where object
func ParseWhere(raw string) (out *store.Filter, err error) {
	out = store.NewFilter()
	if raw == "" {
		return
	}

	var in map[string]json.RawMessage
	err = json.Unmarshal([]byte(raw), &in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalidFilter, err.Error())
	}

	err = where(out, in)
	return
}

func where(out *store.Filter, in map[string]json.RawMessage) (err error) {
	for field, raw := range in {
		var value any
		err = json.Unmarshal(raw, &value)
		if err != nil {
			return fmt.Errorf("%w: %s", store.ErrInvalidFilter, err.Error())
		}

		if _, ok := value.(map[string]any); !ok {
			out.WithWhere(field, value)
			continue
		}

		var cond condition
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(&cond)
		if err != nil || cond.Like == nil {
			return fmt.Errorf("%w: unsupported condition on %q", store.ErrInvalidFilter, field)
		}
		out.WithLike(field, *cond.Like)
	}
	return nil
}

// Order is either "field [ASC|DESC]" or a list of those
func order(out *store.Filter, raw json.RawMessage) (err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []string
	if raw[0] == '[' {
		err = json.Unmarshal(raw, &items)
	} else {
		var item string
		err = json.Unmarshal(raw, &item)
		items = []string{item}
	}
	if err != nil {
		return fmt.Errorf("%w: order must be a string or a list of strings", store.ErrInvalidFilter)
	}

	for _, item := range items {
		parts := strings.Fields(item)
		switch {
		case len(parts) == 1:
			out.WithOrder(parts[0], false)
		case len(parts) == 2 && strings.EqualFold(parts[1], "ASC"):
			out.WithOrder(parts[0], false)
		case len(parts) == 2 && strings.EqualFold(parts[1], "DESC"):
			out.WithOrder(parts[0], true)
		default:
			return fmt.Errorf("%w: invalid order %q", store.ErrInvalidFilter, item)
		}
	}
	return nil
}
