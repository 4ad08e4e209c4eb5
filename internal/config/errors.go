package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure: an empty addr, non-positive
	// sizes, an unknown log format or value policy.
	ErrInvalidConfig = errors.New("invalid retention config")

	// ErrLoadConfig wraps failures reading a layer: the .env file, the YAML
	// file named by RETENTION_CONFIG or --config, or RETENTION_* variables.
	ErrLoadConfig = errors.New("load retention config")
)
