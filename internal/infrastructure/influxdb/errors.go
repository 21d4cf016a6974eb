package influxdb

import "errors"

// Sentinel errors for the telemetry mirror. Check with errors.Is().
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the telemetry mirror is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
