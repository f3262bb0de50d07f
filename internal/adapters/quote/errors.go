package quote

import "errors"

// Sentinel kinds for quote client errors.
var (
	ErrRequest = errors.New("quote request failed")
	ErrStatus  = errors.New("quote api returned unexpected status")
	ErrDecode  = errors.New("quote response undecodable")
	ErrNoData  = errors.New("no quote data for symbol")
)
