package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrRunInProgress  = errors.New("run already in progress")
	ErrCollectTimeout = errors.New("collection budget exceeded")
)
