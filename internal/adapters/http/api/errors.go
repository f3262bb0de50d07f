package api

import (
	"errors"

	service "github.com/moatwatch/moatwatch/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")

	// ErrRunInProgress is the pipeline's rejection of overlapping runs,
	// shared so handlers classify the error the run path actually returns.
	ErrRunInProgress = service.ErrRunInProgress
)
