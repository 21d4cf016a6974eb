package usage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gridsense/gridsense-core/internal/device"
	"github.com/gridsense/gridsense-core/internal/infrastructure/logging"
)

// Mirror receives successfully appended records for best-effort export to a
// time-series backend. Implementations must not block; a failed mirror write
// never fails the ledger operation.
type Mirror interface {
	WriteUsagePoint(deviceID string, value float64, ts time.Time)
}

// Ledger is the append-only energy usage store, scoped through device
// ownership. Every operation that targets a device resolves it via the
// device registry's owner-scoped lookup first, so records of another user's
// device are unreachable exactly as if the device did not exist.
type Ledger struct {
	devices device.Repository
	records Repository
	mirror  Mirror
	logger  *logging.Logger
}

// NewLedger creates a usage ledger. mirror may be nil to disable export.
func NewLedger(devices device.Repository, records Repository, mirror Mirror, logger *logging.Logger) *Ledger {
	return &Ledger{
		devices: devices,
		records: records,
		mirror:  mirror,
		logger:  logger.With("component", "usage"),
	}
}

// Record appends a usage measurement for a device owned by ownerID.
//
// The value must be a non-negative finite number; negative readings are
// rejected with ErrInvalidValue. Returns device.ErrDeviceNotFound when the
// device is absent or owned by another user.
func (l *Ledger) Record(ctx context.Context, ownerID, deviceID string, value float64, ts time.Time) (*Record, error) {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrInvalidValue
	}

	if _, err := l.devices.GetOwned(ctx, deviceID, ownerID); err != nil {
		return nil, err
	}

	rec := &Record{
		DeviceID:  deviceID,
		Timestamp: ts,
		Value:     value,
	}
	if err := l.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording usage: %w", err)
	}

	l.logger.Debug("usage recorded",
		"record_id", rec.ID,
		"device_id", deviceID,
		"value", value,
	)

	if l.mirror != nil {
		l.mirror.WriteUsagePoint(deviceID, value, rec.Timestamp)
	}

	return rec, nil
}

// Query returns all records for an owned device with a timestamp in
// [start, end], both ends inclusive, ordered by timestamp ascending.
// Returns device.ErrDeviceNotFound under the same ownership rule as Record.
func (l *Ledger) Query(ctx context.Context, ownerID, deviceID string, start, end time.Time) ([]Record, error) {
	if _, err := l.devices.GetOwned(ctx, deviceID, ownerID); err != nil {
		return nil, err
	}
	return l.records.QueryRange(ctx, deviceID, start, end)
}

// TotalForUser sums usage values across all of a user's devices within
// [start, end] inclusive. Returns 0 when no records match; it is not an
// error to aggregate over an empty range or an empty device fleet.
func (l *Ledger) TotalForUser(ctx context.Context, ownerID string, start, end time.Time) (float64, error) {
	return l.records.SumForOwner(ctx, ownerID, start, end)
}
