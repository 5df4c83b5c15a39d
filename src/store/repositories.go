package store

import (
	"context"

	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
)

// Repositories for the configured backend
func NewRepositories(ctx context.Context, config *config.Config, applicationName string) (out *Repositories, err error) {
	if config.Database.InMemory {
		return NewMemoryRepositories(), nil
	}

	db, err := model.NewConnection(ctx, config, applicationName)
	if err != nil {
		return
	}
	return NewGormRepositories(db), nil
}
