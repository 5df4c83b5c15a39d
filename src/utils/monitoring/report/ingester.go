package report

import (
	"go.uber.org/atomic"
)

type IngesterErrors struct {
	DbFunctionInsert atomic.Uint64 `json:"db_function_insert"`
	FunctionNotFound atomic.Uint64 `json:"function_not_found"`
	DerivationFailed atomic.Uint64 `json:"derivation_failed"`
	RollbackFailed   atomic.Uint64 `json:"rollback_failed"`
}

type IngesterState struct {
	DerivationsStarted               atomic.Uint64  `json:"derivations_started"`
	DerivationsFinished              atomic.Uint64  `json:"derivations_finished"`
	RollbacksFinished                atomic.Uint64  `json:"rollbacks_finished"`
	FunctionsDerived                 atomic.Uint64  `json:"functions_derived"`
	AverageFunctionsDerivedPerMinute atomic.Float64 `json:"average_functions_derived_per_minute"`
}

type IngesterReport struct {
	State  IngesterState  `json:"state"`
	Errors IngesterErrors `json:"errors"`
}
