package report

import (
	"go.uber.org/atomic"
)

type ApiErrors struct {
	DbError     atomic.Uint64 `json:"db_error"`
	RateLimited atomic.Uint64 `json:"rate_limited"`
}

type ApiState struct {
	ContainersCreated atomic.Uint64 `json:"containers_created"`
	ContainersDeleted atomic.Uint64 `json:"containers_deleted"`
	FunctionsDeleted  atomic.Uint64 `json:"functions_deleted"`
}

type ApiReport struct {
	State  ApiState  `json:"state"`
	Errors ApiErrors `json:"errors"`
}
