package repository

import "errors"

// Sentinel kinds for store errors. Wrap with %w and context at call sites.
var (
	ErrNotFound = errors.New("not found")
	ErrEncode   = errors.New("encode failed")
	ErrDecode   = errors.New("decode failed")
	ErrIO       = errors.New("filesystem operation failed")
)
