package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

const TableContainer = "pipe_containers"

// Pipe container wraps a source artifact together with its ABI and documentation
type PipeContainer struct {
	Id        string         `json:"_id" gorm:"primaryKey"`
	Name      string         `json:"name"`
	Container Payload        `json:"container" gorm:"type:jsonb"`
	Uri       string         `json:"uri,omitempty"`
	Tags      pq.StringArray `json:"tags" gorm:"type:text[]"`
	Project   string         `json:"project,omitempty"`
	ChainIds  pq.StringArray `json:"chainids" gorm:"type:text[]"`
	Timestamp time.Time      `json:"timestamp"`
}

func (PipeContainer) TableName() string {
	return TableContainer
}

func (self *PipeContainer) GetId() string {
	return self.Id
}

func (self *PipeContainer) SetId(id string) {
	self.Id = id
}

func (self *PipeContainer) SetDefaults(now time.Time) {
	if self.Timestamp.IsZero() {
		self.Timestamp = now
	}
	if self.ChainIds == nil {
		self.ChainIds = pq.StringArray{}
	}
}

func (self *PipeContainer) Validate() error {
	if self.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if self.Tags == nil {
		return fmt.Errorf("%w: tags are required", ErrValidation)
	}
	return nil
}

func (self *PipeContainer) Fields() map[string]string {
	return map[string]string{
		"_id":       "id",
		"name":      "name",
		"uri":       "uri",
		"project":   "project",
		"timestamp": "timestamp",
	}
}
