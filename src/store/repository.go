package store

import (
	"context"

	"github.com/pipeos/pipes/src/utils/model"
)

// Repository keeps one kind of records. Ids are always generated by the repository.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) (*T, error)
	FindById(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, filter *Filter) ([]*T, error)
	UpdateById(ctx context.Context, id string, patch map[string]any) error
	UpdateAll(ctx context.Context, patch map[string]any, filter *Filter) (int64, error)
	DeleteById(ctx context.Context, id string) error
	Delete(ctx context.Context, filter *Filter) (int64, error)
	Count(ctx context.Context, filter *Filter) (int64, error)
}

// Functions are children of containers
type FunctionRepository interface {
	Repository[model.PipeFunction]

	// Repository limited to the functions of one container
	Children(containerId string) Repository[model.PipeFunction]
}

type Repositories struct {
	Containers Repository[model.PipeContainer]
	Functions  FunctionRepository
	Tags       Repository[model.Tag]
}

// Constraint for pointers to records
type entity[T any] interface {
	*T
	model.Entity
}
