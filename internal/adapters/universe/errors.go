package universe

import "errors"

// Sentinel kinds for symbol source errors.
var (
	ErrSourceRequest = errors.New("symbol source request failed")
	ErrSourceStatus  = errors.New("symbol source returned unexpected status")
	ErrSourceParse   = errors.New("symbol source response unparseable")
)
