package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Service holds the HTTP-side settings. Database and logging settings are
// read by their own packages.
type Service struct {
	Port             int           `envconfig:"SERVICE_PORT" default:"9720"`
	PublicURL        string        `envconfig:"PUBLIC_URL"`
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT" default:"10s"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	AllowedOrigins   []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitRPS     float64       `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst   int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (Service, error) {
	var c Service
	err := envconfig.Process("", &c)
	return c, err
}
