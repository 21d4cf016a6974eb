package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewSQLiteUserRepository(testDB(t)), testSecret, 30*time.Minute)
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() should assign an ID")
	}
	if user.PasswordHash == "hunter2-hunter2" {
		t.Error("password must not be stored in plaintext")
	}

	token, err := svc.Login(ctx, "alice", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// The issued token must validate back to the same username
	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Authenticate() username = %q, want %q", got.Username, "alice")
	}
}

func TestService_Register_InvalidInput(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "password"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("empty username: error = %v, want ErrInvalidUsername", err)
	}
	if _, err := svc.Register(ctx, "has spaces", "password"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("malformed username: error = %v, want ErrInvalidUsername", err)
	}
	if _, err := svc.Register(ctx, "bob", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("empty password: error = %v, want ErrEmptyPassword", err)
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	seedTestUser(t, svc, "taken", "password-one")

	_, err := svc.Register(ctx, "taken", "password-two")
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("error = %v, want ErrUsernameExists", err)
	}
}

func TestService_Login_NoUsernameEnumeration(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	seedTestUser(t, svc, "alice", "correct-password")

	// Wrong password and nonexistent user must yield the identical error
	_, wrongPassErr := svc.Login(ctx, "alice", "wrong-password")
	_, noUserErr := svc.Login(ctx, "nobody", "whatever")

	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", wrongPassErr)
	}
	if !errors.Is(noUserErr, ErrInvalidCredentials) {
		t.Errorf("unknown user: error = %v, want ErrInvalidCredentials", noUserErr)
	}
	if wrongPassErr.Error() != noUserErr.Error() {
		t.Errorf("error messages differ: %q vs %q", wrongPassErr, noUserErr)
	}
}

func TestService_Authenticate_Expired(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	seedTestUser(t, svc, "alice", "password-123")

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = svc.Authenticate(ctx, expired)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestService_Authenticate_UnknownSubject(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	// Token is validly signed but its subject was never registered
	token, err := GenerateAccessToken("ghost", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	_, err = svc.Authenticate(ctx, token)
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("error = %v, want ErrUnknownSubject", err)
	}
}

func TestService_Authenticate_Garbage(t *testing.T) {
	svc := testService(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}
