package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{
		Username:     "testuser",
		PasswordHash: hash,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Username != "testuser" {
		t.Errorf("Username = %q, want %q", got.Username, "testuser")
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should be populated")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	user := &User{Username: "alice", PasswordHash: hash}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %q, want %q", got.ID, user.ID)
	}
}

func TestUserRepository_GetByUsername_CaseSensitive(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	if err := repo.Create(ctx, &User{Username: "Alice", PasswordHash: hash}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := repo.GetByUsername(ctx, "alice")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("lookup with different case: error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteUserRepository(db)

	_, err := repo.GetByUsername(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestIsUsernameConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"username column", errors.New("UNIQUE constraint failed: users.username"), true},
		{"id column", errors.New("UNIQUE constraint failed: users.id"), false},
		{"unrelated", errors.New("no such table: users"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUsernameConflict(tt.err); got != tt.want {
				t.Errorf("isUsernameConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("password123")
	if err := repo.Create(ctx, &User{Username: "duplicate", PasswordHash: hash}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, &User{Username: "duplicate", PasswordHash: hash})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("error = %v, want ErrUsernameExists", err)
	}

	// The store must contain exactly one such user
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}
