package config

import (
	"github.com/spf13/viper"
)

type API struct {
	// REST API address
	ListenAddress string

	// Allowed CORS origins, "*" allows everything
	CorsAllowOrigins []string

	// Requests per second accepted by the API, 0 disables limiting
	RateLimit float64

	// Burst of requests allowed above the rate limit
	RateBurst int
}

func setAPIDefaults() {
	viper.SetDefault("API.ListenAddress", ":3000")
	viper.SetDefault("API.CorsAllowOrigins", []string{"*"})
	viper.SetDefault("API.RateLimit", "0")
	viper.SetDefault("API.RateBurst", "50")
}
