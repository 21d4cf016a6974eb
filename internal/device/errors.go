package device

import "errors"

var (
	// ErrDeviceNotFound is returned when a device does not exist or is not
	// owned by the requesting user. The two cases are deliberately not
	// distinguishable.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidName is returned when a device name is empty.
	ErrInvalidName = errors.New("device name is required")

	// ErrInvalidPowerUsage is returned when power usage is negative or not finite.
	ErrInvalidPowerUsage = errors.New("power usage must be a non-negative finite number")
)
