package model

import (
	"encoding/json"
)

// Devdoc or userdoc emitted by the Solidity compiler.
// Methods are keyed by function signature, other keys are kept as they are.
type Doc struct {
	Methods map[string]JSON
	Extra   map[string]JSON
}

func NewDoc() *Doc {
	return &Doc{Methods: make(map[string]JSON)}
}

// Documentation of a method, nil if there's none
func (self *Doc) Method(signature string) JSON {
	if self == nil {
		return nil
	}
	return self.Methods[signature]
}

func (self Doc) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(self.Extra)+1)
	for key, value := range self.Extra {
		out[key] = value
	}
	methods := self.Methods
	if methods == nil {
		methods = make(map[string]JSON)
	}
	out["methods"] = methods
	return json.Marshal(out)
}

func (self *Doc) UnmarshalJSON(data []byte) (err error) {
	var fields map[string]JSON
	err = json.Unmarshal(data, &fields)
	if err != nil {
		return
	}

	self.Methods = make(map[string]JSON)
	self.Extra = nil
	for key, value := range fields {
		if key == "methods" {
			if !value.IsPresent() {
				continue
			}
			err = json.Unmarshal(value, &self.Methods)
			if err != nil {
				return
			}
			continue
		}
		if self.Extra == nil {
			self.Extra = make(map[string]JSON)
		}
		self.Extra[key] = value
	}
	return
}
