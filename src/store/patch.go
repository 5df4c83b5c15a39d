package store

import (
	"encoding/json"
)

// Returns a copy of the record with top level JSON fields replaced by the patch.
// Id can't be changed.
func applyPatch[T any, PT entity[T]](current *T, patch map[string]any) (out *T, err error) {
	buf, err := json.Marshal(current)
	if err != nil {
		return
	}

	var doc map[string]any
	err = json.Unmarshal(buf, &doc)
	if err != nil {
		return
	}

	for field, value := range patch {
		if field == "_id" {
			continue
		}
		doc[field] = value
	}

	buf, err = json.Marshal(doc)
	if err != nil {
		return
	}

	out = new(T)
	err = json.Unmarshal(buf, out)
	if err != nil {
		return nil, err
	}

	PT(out).SetId(PT(current).GetId())

	err = PT(out).Validate()
	if err != nil {
		return nil, err
	}
	return
}

// Patch without the given fields
func without(patch map[string]any, fields ...string) map[string]any {
	out := make(map[string]any, len(patch))
	for field, value := range patch {
		out[field] = value
	}
	for _, field := range fields {
		delete(out, field)
	}
	return out
}
