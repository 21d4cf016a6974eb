package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for usage record persistence.
//
// The ledger is append-only: records are inserted and read, never updated or
// deleted. Ownership checks happen one level up, in Ledger; the repository
// trusts the device id it is given except for SumForOwner, which joins on
// the devices table so the aggregate can never leak another user's records.
type Repository interface {
	// Insert appends a new record and assigns its id.
	Insert(ctx context.Context, rec *Record) error

	// QueryRange retrieves all records for a device with a timestamp in
	// [start, end], both ends inclusive, ordered by timestamp ascending.
	QueryRange(ctx context.Context, deviceID string, start, end time.Time) ([]Record, error)

	// SumForOwner totals usage values across every device owned by ownerID
	// within [start, end] inclusive. Returns 0 when nothing matches.
	SumForOwner(ctx context.Context, ownerID string, start, end time.Time) (float64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed usage repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert appends a usage record. The ID is generated if empty and the
// timestamp is truncated to second precision in UTC.
//
// Record ids use the wide 16-character form. The ledger is the
// highest-cardinality table in the system and the short form does not carry
// enough randomness to keep collision odds negligible at reading volume.
func (r *SQLiteRepository) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = "rec-" + uuid.NewString()[:16]
	}

	rec.Timestamp = rec.Timestamp.UTC().Truncate(time.Second)
	now := time.Now().UTC().Format(time.RFC3339)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO usage_records (id, device_id, timestamp, usage_value, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.DeviceID, rec.Timestamp.Format(time.RFC3339), rec.Value, now,
	)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}

	return nil
}

// QueryRange retrieves records for a device within [start, end] inclusive.
// Timestamps are stored as RFC 3339 UTC text at second precision, so the
// range predicate is a plain string comparison served by the
// (device_id, timestamp) index. A fractional-second start rounds up and a
// fractional-second end rounds down, keeping both bounds inclusive for
// sub-second callers.
func (r *SQLiteRepository) QueryRange(ctx context.Context, deviceID string, start, end time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, timestamp, usage_value, created_at
		 FROM usage_records
		 WHERE device_id = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, id ASC`,
		deviceID,
		ceilSecond(start.UTC()).Format(time.RFC3339),
		end.UTC().Truncate(time.Second).Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage records: %w", err)
	}

	return records, nil
}

// SumForOwner totals usage across all of a user's devices within
// [start, end] inclusive. The join on devices scopes the aggregate to the
// owner; COALESCE turns the empty-set NULL into 0.
func (r *SQLiteRepository) SumForOwner(ctx context.Context, ownerID string, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(u.usage_value), 0)
		 FROM usage_records u
		 JOIN devices d ON d.id = u.device_id
		 WHERE d.owner_id = ? AND u.timestamp >= ? AND u.timestamp <= ?`,
		ownerID,
		ceilSecond(start.UTC()).Format(time.RFC3339),
		end.UTC().Truncate(time.Second).Format(time.RFC3339),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing usage records: %w", err)
	}

	return total, nil
}

// ceilSecond rounds t up to the next whole second. Used for range starts:
// flooring a fractional start would match records stored at the second below
// it, widening the range past what the caller asked for.
func ceilSecond(t time.Time) time.Time {
	floored := t.Truncate(time.Second)
	if floored.Before(t) {
		return floored.Add(time.Second)
	}
	return floored
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var timestamp, createdAt string

	if err := s.Scan(&rec.ID, &rec.DeviceID, &timestamp, &rec.Value, &createdAt); err != nil {
		return nil, err
	}

	rec.Timestamp, _ = time.Parse(time.RFC3339, timestamp) //nolint:errcheck // format is controlled
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &rec, nil
}
