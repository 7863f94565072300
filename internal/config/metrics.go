package config

import (
	"errors"
	"fmt"
)

type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("metrics host is required")
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", cfg.Port)
	}
	return nil
}
