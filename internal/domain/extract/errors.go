package extract

import "errors"

// Sentinel kinds for extraction errors. Only transport-level failures are
// errors; a locator chain coming up empty is reported through Result.
var (
	ErrTransport = errors.New("transport failure")
)
