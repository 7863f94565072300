package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("server host is required")
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("server port must be between 1024 and 65535, got %d", cfg.Port)
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("server read-timeout must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("server write-timeout must be positive")
	}
	return nil
}

func (cfg *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
