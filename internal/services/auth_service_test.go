package services_test

import (
	"errors"
	"testing"
	"time"

	"freshtrack/internal/repos"
	"freshtrack/internal/services"
)

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	db := memdb(t)
	auth := services.NewAuthService(repos.NewUserRepo(db), "test-secret", time.Hour)

	u, tok, err := auth.Register("Carol@Example.com", "Carol", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "carol@example.com" || u.Role != "USER" || tok == "" {
		t.Fatalf("unexpected registration %+v", u)
	}
	if _, _, err := auth.Register("carol@example.com", "Carol", "Passw0rd!"); !errors.Is(err, services.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	if _, _, err := auth.Login("carol@example.com", "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	_, tok, err = auth.Login("CAROL@example.com", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}

	got, claims, err := auth.Authenticate(tok)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || claims.Subject != u.ID {
		t.Fatalf("token resolves to %s, want %s", got.ID, u.ID)
	}

	if err := auth.Logout(claims); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.Authenticate(tok); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("revoked token must fail, got %v", err)
	}
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	auth := services.NewAuthService(users, "secret-a", time.Hour)
	other := services.NewAuthService(users, "secret-b", time.Hour)

	_, tok, err := other.Login("alice@freshtrack.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.Authenticate(tok); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("token signed with another secret must fail, got %v", err)
	}
	if _, _, err := auth.Authenticate("garbage"); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("garbage must fail, got %v", err)
	}

	expired := services.NewAuthService(users, "secret-a", -time.Minute)
	_, tok, _ = expired.Login("alice@freshtrack.test", "Passw0rd!")
	if _, _, err := auth.Authenticate(tok); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expired token must fail, got %v", err)
	}
}
