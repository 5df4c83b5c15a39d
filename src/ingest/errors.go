package ingest

import (
	"errors"
	"fmt"
)

var ErrIngestion = errors.New("ingestion failed")

// Derivation of a container's functions stopped at the given ABI entry
type IngestionError struct {
	ContainerId string
	Position    int
	Signature   string

	// Persistence failure, nil if the created function wasn't found afterwards
	Err error
}

func (self *IngestionError) Error() string {
	reason := "function was not created"
	if self.Err != nil {
		reason = self.Err.Error()
	}
	return fmt.Sprintf("%s: container %s, abi entry %d (%s): %s", ErrIngestion, self.ContainerId, self.Position, self.Signature, reason)
}

func (self *IngestionError) Unwrap() error {
	return self.Err
}

func (self *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}
