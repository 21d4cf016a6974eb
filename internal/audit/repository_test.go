package audit

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			details TEXT,
			created_at TEXT NOT NULL
		) STRICT;
		CREATE INDEX idx_audit_logs_user ON audit_logs(user_id, created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

func TestRepository_CreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	entry := &Entry{
		UserID:     "usr-alice",
		Action:     ActionDeviceCreate,
		EntityType: "device",
		EntityID:   "dev-001",
		Details:    map[string]any{"name": "Heat Pump"},
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Create() should assign an ID")
	}
	// Trail ids use the wide 16-character form; the trail grows with every
	// mutating request
	if got := len(strings.TrimPrefix(entry.ID, "aud-")); got != 16 {
		t.Errorf("ID random part is %d characters, want 16", got)
	}

	result, err := repo.List(ctx, Filter{UserID: "usr-alice"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("List() total = %d, entries = %d, want 1 each", result.Total, len(result.Entries))
	}

	got := result.Entries[0]
	if got.Action != ActionDeviceCreate || got.EntityID != "dev-001" {
		t.Errorf("entry = %+v", got)
	}
	if got.Details["name"] != "Heat Pump" {
		t.Errorf("details = %v", got.Details)
	}
}

func TestRepository_Create_RequiresUser(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	if err := repo.Create(context.Background(), &Entry{Action: ActionLogin, EntityType: "user"}); err == nil {
		t.Error("Create() without user id should fail")
	}
}

func TestRepository_List_UserScoped(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	for _, userID := range []string{"usr-alice", "usr-alice", "usr-bob"} {
		if err := repo.Create(ctx, &Entry{UserID: userID, Action: ActionLogin, EntityType: "user"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.List(ctx, Filter{UserID: "usr-alice"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 2 {
		t.Errorf("List() total = %d, want 2", result.Total)
	}
	for _, e := range result.Entries {
		if e.UserID != "usr-alice" {
			t.Errorf("entry %s belongs to %s", e.ID, e.UserID)
		}
	}

	if _, err := repo.List(ctx, Filter{}); err == nil {
		t.Error("List() without user id should fail")
	}
}

func TestRepository_List_FilterAndPaginate(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &Entry{UserID: "usr-alice", Action: ActionUsageRecord, EntityType: "usage_record"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := repo.Create(ctx, &Entry{UserID: "usr-alice", Action: ActionLogin, EntityType: "user"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := repo.List(ctx, Filter{UserID: "usr-alice", Action: ActionUsageRecord, Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 3 {
		t.Errorf("filtered total = %d, want 3", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Entries))
	}
}
