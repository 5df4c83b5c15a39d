package model

import (
	"fmt"
	"time"
)

const TableTag = "tags"

type Tag struct {
	Id          string    `json:"_id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (Tag) TableName() string {
	return TableTag
}

func (self *Tag) GetId() string {
	return self.Id
}

func (self *Tag) SetId(id string) {
	self.Id = id
}

func (self *Tag) SetDefaults(now time.Time) {
	if self.Timestamp.IsZero() {
		self.Timestamp = now
	}
}

func (self *Tag) Validate() error {
	if self.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

func (self *Tag) Fields() map[string]string {
	return map[string]string{
		"_id":         "id",
		"name":        "name",
		"description": "description",
		"timestamp":   "timestamp",
	}
}
