package config

import (
	"github.com/spf13/viper"
)

type Ingestion struct {
	// Re-read every created function before deriving the next one.
	// Only meaningful when the store is eventually consistent.
	VerifyCreated bool

	// Num of workers deriving functions in the background
	MaxWorkers int

	// Max num of derivations waiting for a worker
	MaxQueueSize int
}

func setIngestionDefaults() {
	viper.SetDefault("Ingestion.VerifyCreated", "true")
	viper.SetDefault("Ingestion.MaxWorkers", "10")
	viper.SetDefault("Ingestion.MaxQueueSize", "1000")
}
