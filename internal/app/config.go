package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/definition"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DefinitionPath string // .yml, .yaml, .json or .hcl
	Collection     string // top-level key holding the element list

	LogFormat       string
	LogLevel        string
	LogDir          string // empty disables the log file
	RedactionRetry  int
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefinitionPath == "" {
		return nil, errors.New("DefinitionPath is a required configuration field and cannot be empty")
	}
	if cfg.Collection == "" {
		cfg.Collection = definition.DefaultCollection
	}
	if cfg.RedactionRetry < 1 {
		return nil, fmt.Errorf("RedactionRetry must be at least 1, got %d", cfg.RedactionRetry)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort must be between 0 and 65535, got %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
