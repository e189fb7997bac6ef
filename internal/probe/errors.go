package probe

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInconclusiveStatus is recorded when a step saw a status it cannot judge.
	ErrInconclusiveStatus = errors.New("inconclusive status")

	// ErrUnsupportedScheme is recorded for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)
