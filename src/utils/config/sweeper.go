package config

import (
	"github.com/spf13/viper"
)

// Periodic removal of functions whose container no longer exists
type Sweeper struct {
	Enabled bool

	// Cron spec, seconds included
	Schedule string

	// Num of functions fetched in one query
	BatchSize int
}

func setSweeperDefaults() {
	viper.SetDefault("Sweeper.Enabled", "false")
	viper.SetDefault("Sweeper.Schedule", "@every 10m")
	viper.SetDefault("Sweeper.BatchSize", "500")
}
