package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/wunjo/internal/apperr"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultAdminSeeded(t *testing.T) {
	s := tempStore(t)

	u, err := s.Authenticate("admin", "admin")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Username != "admin" || u.Email != "admin@example.com" {
		t.Errorf("user = %+v", u)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := tempStore(t)

	u, err := s.Register("alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "alice" || u.Disabled {
		t.Errorf("user = %+v", u)
	}

	if _, err := s.Authenticate("alice", "s3cret"); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := s.Authenticate("nobody", "x"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := tempStore(t)

	if _, err := s.Register("bob", "", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register("bob", "", "pw2"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestGetMissingUser(t *testing.T) {
	s := tempStore(t)

	if _, err := s.Get("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	subject, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "alice" {
		t.Errorf("subject = %q", subject)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer("secret-b", time.Hour).Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("wrong secret err = %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("s", time.Hour)

	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("garbage token err = %v", err)
	}
}
