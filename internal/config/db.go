package config

import (
	"errors"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Address == "" {
		return errors.New("db address is required")
	}
	if cfg.DbName == "" {
		return errors.New("db name is required")
	}
	return nil
}
