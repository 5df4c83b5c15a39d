package report

import (
	"go.uber.org/atomic"
)

type SweeperErrors struct {
	Sweep atomic.Uint64 `json:"sweep"`
}

type SweeperState struct {
	LastSweepTimestamp atomic.Int64  `json:"last_sweep_timestamp"`
	FunctionsRemoved   atomic.Uint64 `json:"functions_removed"`
}

type SweeperReport struct {
	State  SweeperState  `json:"state"`
	Errors SweeperErrors `json:"errors"`
}
