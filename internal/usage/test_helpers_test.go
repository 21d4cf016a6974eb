package usage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gridsense/gridsense-core/internal/device"
)

// testDB creates a temporary SQLite database with the full relational
// schema applied and two seeded owner accounts.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/usage-test.db"

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			power_usage REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE usage_records (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			usage_value REAL NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
		) STRICT;

		CREATE INDEX idx_usage_records_device_ts ON usage_records(device_id, timestamp);

		INSERT INTO users (id, username, password_hash) VALUES ('usr-alice', 'alice', 'x');
		INSERT INTO users (id, username, password_hash) VALUES ('usr-bob', 'bob', 'x');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedDevice registers a device for an owner and returns it.
func seedDevice(t *testing.T, db *sql.DB, ownerID, name string) *device.Device {
	t.Helper()

	dev := &device.Device{OwnerID: ownerID, Name: name, Type: "meter"}
	if err := device.NewSQLiteRepository(db).Create(context.Background(), dev); err != nil {
		t.Fatalf("seeding device: %v", err)
	}
	return dev
}

// at builds a UTC timestamp at the given offset in seconds from a fixed base.
func at(offsetSeconds int) time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(offsetSeconds) * time.Second)
}
