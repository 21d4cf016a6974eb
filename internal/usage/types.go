package usage

import "time"

// Record is a single energy usage measurement for a device.
type Record struct {
	ID       string `json:"id"`
	DeviceID string `json:"device_id"`

	// Timestamp is when the measurement was taken, stored at second
	// precision in UTC.
	Timestamp time.Time `json:"timestamp"`

	// Value is the measured energy usage. Always a non-negative finite
	// number; zero is valid.
	Value float64 `json:"usage"`

	CreatedAt time.Time `json:"created_at"`
}
