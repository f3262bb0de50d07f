package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrTemplate = errors.New("template failed")
	ErrWrite    = errors.New("write failed")
)
