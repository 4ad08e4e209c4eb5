package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrNoData = errors.New("nothing to draw")
)
