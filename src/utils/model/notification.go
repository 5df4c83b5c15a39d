package model

import "encoding/json"

type IngestionStatus string

const (
	IngestionStatusDerived    IngestionStatus = "derived"
	IngestionStatusRolledBack IngestionStatus = "rolled_back"
)

// Published after every background derivation
type IngestionNotification struct {
	ContainerId string          `json:"containerid"`
	Status      IngestionStatus `json:"status"`
	Functions   int             `json:"functions"`
	Error       string          `json:"error,omitempty"`
}

func (self *IngestionNotification) MarshalBinary() (data []byte, err error) {
	return json.Marshal(self)
}
