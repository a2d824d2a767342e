package influxdb

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps failures delivered to the SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: write failed")

	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
