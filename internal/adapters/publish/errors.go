package publish

import "errors"

// Sentinel kinds for publish errors.
var (
	ErrGit = errors.New("git operation failed")
)
