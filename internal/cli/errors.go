package cli

import "errors"

// Sentinel kinds for CLI errors.
var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrBothFailed    = errors.New("neither video could be analysed")
	ErrNoOutput      = errors.New("--out is required")
)
