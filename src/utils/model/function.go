package model

import (
	"time"

	"github.com/lib/pq"
)

const TableFunction = "pipe_functions"

// Pipe function is derived from one ABI entry of a container
type PipeFunction struct {
	Id          string `json:"_id" gorm:"primaryKey"`
	ContainerId string `json:"containerid" gorm:"index:idx_pipe_functions_container,priority:1"`

	// Index of the entry in the container's ABI
	Position int `json:"position" gorm:"index:idx_pipe_functions_container,priority:2"`

	// Empty for unnamed entries (constructor, fallback)
	Signature string `json:"signature,omitempty"`
	Selector  string `json:"selector,omitempty"`

	AbiObj    JSON           `json:"abiObj" gorm:"type:jsonb"`
	Devdoc    JSON           `json:"devdoc,omitempty" gorm:"type:jsonb"`
	Userdoc   JSON           `json:"userdoc,omitempty" gorm:"type:jsonb"`
	Uri       string         `json:"uri,omitempty"`
	Tags      pq.StringArray `json:"tags" gorm:"type:text[]"`
	Timestamp time.Time      `json:"timestamp"`
	ChainId   ChainId        `json:"chainid,omitempty"`
}

func (PipeFunction) TableName() string {
	return TableFunction
}

func (self *PipeFunction) GetId() string {
	return self.Id
}

func (self *PipeFunction) SetId(id string) {
	self.Id = id
}

func (self *PipeFunction) SetDefaults(now time.Time) {
	if self.Timestamp.IsZero() {
		self.Timestamp = now
	}
	if self.Tags == nil {
		self.Tags = pq.StringArray{}
	}
}

func (self *PipeFunction) Validate() error {
	return nil
}

func (self *PipeFunction) Fields() map[string]string {
	return map[string]string{
		"_id":         "id",
		"containerid": "container_id",
		"position":    "position",
		"signature":   "signature",
		"selector":    "selector",
		"uri":         "uri",
		"chainid":     "chain_id",
		"timestamp":   "timestamp",
	}
}
