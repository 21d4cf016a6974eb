// Package device implements the owner-scoped device registry.
//
// Devices belong to exactly one user. GetOwned is the ownership-check
// primitive shared by all device and usage operations: it filters on both
// device id and owner id, so non-owners see ErrDeviceNotFound exactly as if
// the device did not exist.
package device
