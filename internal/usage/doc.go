// Package usage implements the append-only energy usage ledger.
//
// Records are written once and never modified. All device-targeted
// operations resolve the device through the owner-scoped registry lookup
// before touching the ledger, and the cross-device aggregate joins on the
// devices table, so usage data never crosses ownership boundaries.
package usage
