package config

import (
	"errors"
	"time"
)

type OracleConfig struct {
	// Endpoint is the base URL of the HTTP price feed.
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *OracleConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("oracle endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return errors.New("oracle timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return errors.New("oracle max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("oracle retry-interval must be positive")
	}
	return nil
}
