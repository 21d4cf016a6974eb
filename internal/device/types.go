package device

import "time"

// Device represents a monitorable appliance registered by a user.
//
// Every device has exactly one owning user, fixed at creation. All reads and
// writes filter by both device id and owner id, so a device owned by someone
// else is indistinguishable from one that does not exist.
type Device struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Type    string `json:"type"`

	// Status is the on/off state. Defaults to off at creation; mutable by
	// the owner only.
	Status bool `json:"status"`

	// PowerUsage is the device's rated power draw (non-negative, unit-less).
	PowerUsage float64 `json:"power_usage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
