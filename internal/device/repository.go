package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence operations.
//
// Every read and mutation except Create takes the owner's user id and
// filters on it. GetOwned is the single ownership-check primitive; other
// components (the usage ledger in particular) resolve devices through it
// rather than re-implementing the scoping predicate.
type Repository interface {
	// Create inserts a new device owned by ownerID and assigns its id.
	Create(ctx context.Context, dev *Device) error

	// ListByOwner retrieves all devices owned by a user, in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]Device, error)

	// GetOwned retrieves a device only if it is owned by ownerID.
	// Returns ErrDeviceNotFound when the device is absent or owned by
	// another user; the two cases are indistinguishable.
	GetOwned(ctx context.Context, id, ownerID string) (*Device, error)

	// SetStatus updates a device's on/off state, owner-scoped. Setting the
	// current status again is a no-op success. Returns ErrDeviceNotFound
	// under the same rule as GetOwned.
	SetStatus(ctx context.Context, id, ownerID string, status bool) (*Device, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new device. The ID is generated if empty; status and
// power usage keep their zero values (off, 0.0) unless set by the caller.
func (r *SQLiteRepository) Create(ctx context.Context, dev *Device) error {
	if dev.Name == "" {
		return ErrInvalidName
	}
	if dev.PowerUsage < 0 || math.IsNaN(dev.PowerUsage) || math.IsInf(dev.PowerUsage, 0) {
		return ErrInvalidPowerUsage
	}
	if dev.OwnerID == "" {
		return fmt.Errorf("owner id is required")
	}

	if dev.ID == "" {
		dev.ID = "dev-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	dev.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	dev.UpdatedAt = dev.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, owner_id, name, type, status, power_usage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dev.ID, dev.OwnerID, dev.Name, dev.Type, boolToInt(dev.Status), dev.PowerUsage, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	return nil
}

// ListByOwner retrieves all devices owned by a user, oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, type, status, power_usage, created_at, updated_at
		 FROM devices
		 WHERE owner_id = ?
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// GetOwned retrieves a device scoped to its owner.
func (r *SQLiteRepository) GetOwned(ctx context.Context, id, ownerID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, status, power_usage, created_at, updated_at
		 FROM devices
		 WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)

	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return dev, nil
}

// SetStatus updates a device's on/off state, owner-scoped.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id, ownerID string, status bool) (*Device, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		boolToInt(status), now, id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating device status: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrDeviceNotFound
	}

	return r.GetOwned(ctx, id, ownerID)
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device from a Row or Rows.
func scanDevice(s scanner) (*Device, error) {
	var dev Device
	var status int
	var createdAt, updatedAt string

	err := s.Scan(&dev.ID, &dev.OwnerID, &dev.Name, &dev.Type, &status,
		&dev.PowerUsage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	dev.Status = status != 0
	dev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	dev.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &dev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
