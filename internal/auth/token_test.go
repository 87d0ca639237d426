package auth

import (
	"errors"
	"testing"
	"time"

	"answerhub-service/internal/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewHS256Verifier("test-secret")

	token, err := v.Sign(Identity{UserID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "u1" || identity.IsAdmin {
		t.Errorf("identity = %+v", identity)
	}
}

func TestVerifyCarriesAdminFlag(t *testing.T) {
	v := NewHS256Verifier("test-secret")

	token, err := v.Sign(Identity{UserID: "admin-1", IsAdmin: true}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !identity.IsAdmin {
		t.Error("admin flag lost")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewHS256Verifier("test-secret")
	if _, err := v.Verify("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewHS256Verifier("secret-a")
	token, err := issuer.Sign(Identity{UserID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	v := NewHS256Verifier("secret-b")
	if _, err := v.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewHS256Verifier("test-secret")
	token, err := v.Sign(Identity{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	v := NewHS256Verifier("test-secret")
	token, err := v.Sign(Identity{}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
