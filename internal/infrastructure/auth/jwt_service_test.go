package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/you/faceauthsvc/domain"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "faceauthsvc", 15*time.Minute)

	token, err := svc.GenerateAccessToken("acc-42", "admin", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if claims.SubjectID != "acc-42" {
		t.Errorf("expected subject acc-42, got %s", claims.SubjectID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %s", claims.SessionID)
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		t.Error("expected exp after iat")
	}
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", "faceauthsvc", 15*time.Minute)

	a, err := svc.GenerateAccessToken("acc-1", "user", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.GenerateAccessToken("acc-1", "user", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("expected distinct tokens for identical claims (jti)")
	}
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuing := NewJWTService("secret-a", "faceauthsvc", 15*time.Minute)
	validating := NewJWTService("secret-b", "faceauthsvc", 15*time.Minute)

	token, err := issuing.GenerateAccessToken("acc-1", "user", "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = validating.ValidateAccessToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", "faceauthsvc", 15*time.Minute)

	_, err := svc.ValidateAccessToken("not.a.token")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
