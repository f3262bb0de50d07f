package valuation

import "errors"

// Sentinel kinds for valuation errors. Both mark a symbol as skippable
// rather than failing the collection step.
var (
	ErrInsufficientData  = errors.New("insufficient data for symbol")
	ErrMissingStatements = errors.New("missing financial statements")
)
