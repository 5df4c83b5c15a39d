package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type PayloadKind string

const (
	PayloadKindSmartContract PayloadKind = "smartcontract"
	PayloadKindPython        PayloadKind = "python"
	PayloadKindJavaScript    PayloadKind = "javascript"
	PayloadKindOpenApi       PayloadKind = "openapi"
)

// Fields shared by all payload kinds
type Documented struct {
	Abi     []AbiFunction `json:"abi,omitempty"`
	Devdoc  *Doc          `json:"devdoc,omitempty"`
	Userdoc *Doc          `json:"userdoc,omitempty"`
}

type SmartContract struct {
	Documented
	Bytecode             JSON    `json:"bytecode,omitempty"`
	DeployedBytecode     JSON    `json:"deployedBytecode,omitempty"`
	Metadata             string  `json:"metadata,omitempty"`
	SolSource            string  `json:"solsource,omitempty"`
	AdditionalSolSources JSON    `json:"additional_solsources,omitempty"`
	JsSource             string  `json:"jssource,omitempty"`
	ChainId              ChainId `json:"chainid,omitempty"`
}

type Python struct {
	Documented
	PySource string `json:"pysource,omitempty"`
	Exported string `json:"exported,omitempty"`
}

type JavaScript struct {
	Documented
	JsSource string `json:"jssource,omitempty"`
	Exported string `json:"exported,omitempty"`
}

type OpenApi struct {
	JavaScript
	OpenApiId string `json:"openapiid,omitempty"`
}

// Payload holds exactly one of the variants, selected by Kind.
// Serialized as the variant's fields plus a "kind" discriminator.
type Payload struct {
	Kind          PayloadKind
	SmartContract *SmartContract
	Python        *Python
	JavaScript    *JavaScript
	OpenApi       *OpenApi
}

func NewSmartContractPayload(v *SmartContract) Payload {
	return Payload{Kind: PayloadKindSmartContract, SmartContract: v}
}

func NewPythonPayload(v *Python) Payload {
	return Payload{Kind: PayloadKindPython, Python: v}
}

func NewJavaScriptPayload(v *JavaScript) Payload {
	return Payload{Kind: PayloadKindJavaScript, JavaScript: v}
}

func NewOpenApiPayload(v *OpenApi) Payload {
	return Payload{Kind: PayloadKindOpenApi, OpenApi: v}
}

func (self *Payload) IsEmpty() bool {
	return self.variant() == nil
}

func (self *Payload) variant() any {
	switch self.Kind {
	case PayloadKindSmartContract:
		if self.SmartContract != nil {
			return self.SmartContract
		}
	case PayloadKindPython:
		if self.Python != nil {
			return self.Python
		}
	case PayloadKindJavaScript:
		if self.JavaScript != nil {
			return self.JavaScript
		}
	case PayloadKindOpenApi:
		if self.OpenApi != nil {
			return self.OpenApi
		}
	}
	return nil
}

// Abi and docs, nil for an empty payload
func (self *Payload) Docs() *Documented {
	switch v := self.variant().(type) {
	case *SmartContract:
		return &v.Documented
	case *Python:
		return &v.Documented
	case *JavaScript:
		return &v.Documented
	case *OpenApi:
		return &v.Documented
	}
	return nil
}

// Chain identifier, present only for smart contracts
func (self *Payload) ChainId() (chainId ChainId, ok bool) {
	if v, isContract := self.variant().(*SmartContract); isContract {
		return v.ChainId, true
	}
	return
}

// Script source, empty if the payload has none
func (self *Payload) JsSource() string {
	switch v := self.variant().(type) {
	case *SmartContract:
		return v.JsSource
	case *JavaScript:
		return v.JsSource
	case *OpenApi:
		return v.JsSource
	}
	return ""
}

func (self Payload) MarshalJSON() ([]byte, error) {
	variant := self.variant()
	if variant == nil {
		return []byte("null"), nil
	}

	body, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}

	// Prepend the discriminator to the variant's object
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	kind, _ := json.Marshal(self.Kind)
	buf.Write(kind)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

type payloadHint struct {
	Kind      PayloadKind `json:"kind"`
	OpenApiId string      `json:"openapiid"`
	PySource  string      `json:"pysource"`
	SolSource string      `json:"solsource"`
	Bytecode  JSON        `json:"bytecode"`
	ChainId   ChainId     `json:"chainid"`
	JsSource  string      `json:"jssource"`
}

// Kind inferred from the fields when it isn't given explicitly
func (self *payloadHint) kind() PayloadKind {
	switch {
	case self.Kind != "":
		return self.Kind
	case self.OpenApiId != "":
		return PayloadKindOpenApi
	case self.PySource != "":
		return PayloadKindPython
	case self.SolSource != "" || self.Bytecode.IsPresent() || self.ChainId != "":
		return PayloadKindSmartContract
	case self.JsSource != "":
		return PayloadKindJavaScript
	}
	return PayloadKindSmartContract
}

func (self *Payload) UnmarshalJSON(data []byte) (err error) {
	*self = Payload{}
	if string(data) == "null" {
		return
	}

	var hint payloadHint
	err = json.Unmarshal(data, &hint)
	if err != nil {
		return
	}

	self.Kind = hint.kind()
	switch self.Kind {
	case PayloadKindSmartContract:
		self.SmartContract = new(SmartContract)
		return json.Unmarshal(data, self.SmartContract)
	case PayloadKindPython:
		self.Python = new(Python)
		return json.Unmarshal(data, self.Python)
	case PayloadKindJavaScript:
		self.JavaScript = new(JavaScript)
		return json.Unmarshal(data, self.JavaScript)
	case PayloadKindOpenApi:
		self.OpenApi = new(OpenApi)
		return json.Unmarshal(data, self.OpenApi)
	}
	return fmt.Errorf("%w: unknown container kind %q", ErrValidation, hint.Kind)
}

func (self Payload) Value() (driver.Value, error) {
	if self.IsEmpty() {
		return nil, nil
	}
	return jsonbValue(self)
}

func (self *Payload) Scan(src any) (err error) {
	*self = Payload{}
	_, err = jsonbScan(src, self)
	return
}
