package schedule

import "errors"

// Sentinel kinds for scheduler errors.
var (
	ErrInvalidSpec = errors.New("invalid cron spec")
)
