package model

import (
	"encoding/json"
)

const (
	AbiTypeFunction    = "function"
	AbiTypeConstructor = "constructor"
	AbiTypeFallback    = "fallback"
	AbiTypeReceive     = "receive"
	AbiTypeEvent       = "event"
)

type AbiParameter struct {
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	InternalType string         `json:"internalType,omitempty"`
	Indexed      *bool          `json:"indexed,omitempty"`
	Components   []AbiParameter `json:"components,omitempty"`
}

// One entry of a contract ABI.
// The descriptor as it was received is kept and serialized back unchanged.
type AbiFunction struct {
	Name            string         `json:"name,omitempty"`
	Type            string         `json:"type,omitempty"`
	Inputs          []AbiParameter `json:"inputs"`
	Outputs         []AbiParameter `json:"outputs,omitempty"`
	Constant        *bool          `json:"constant,omitempty"`
	Payable         *bool          `json:"payable,omitempty"`
	StateMutability string         `json:"stateMutability,omitempty"`
	Anonymous       *bool          `json:"anonymous,omitempty"`

	raw JSON
}

type abiFunction AbiFunction

func (self *AbiFunction) UnmarshalJSON(data []byte) (err error) {
	var v abiFunction
	err = json.Unmarshal(data, &v)
	if err != nil {
		return
	}
	*self = AbiFunction(v)
	self.raw = append(JSON(nil), data...)
	return
}

func (self AbiFunction) MarshalJSON() ([]byte, error) {
	if self.raw.IsPresent() {
		return self.raw, nil
	}
	return json.Marshal(abiFunction(self))
}
