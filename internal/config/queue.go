package config

import (
	"errors"
)

type QueueConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.URL == "" {
		return errors.New("queue url is required")
	}
	if cfg.Exchange == "" {
		return errors.New("queue exchange is required")
	}
	return nil
}
