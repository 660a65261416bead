package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: 7, Name: "Rebin", Role: RoleManager, SessionID: "s1"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.Role != claims.Role || parsed.SessionID != claims.SessionID || parsed.Name != claims.Name {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if parsed.Subject != "7" {
		t.Fatalf("expected subject 7, got %q", parsed.Subject)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("one", Claims{UserID: 1, Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("two", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: 1, Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected deterministic hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different hashes")
	}
}

func TestGenerateSecretLength(t *testing.T) {
	secret, err := GenerateSecret(12)
	if err != nil {
		t.Fatalf("secret error: %v", err)
	}
	if len(secret) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(secret))
	}
}

func TestActorRoles(t *testing.T) {
	tests := []struct {
		role      string
		admin     bool
		canReview bool
	}{
		{RoleEmployee, false, false},
		{RoleManager, false, true},
		{RoleAdmin, true, true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.role, func(t *testing.T) {
			actor := Actor{UserID: 1, Role: tc.role}
			if actor.IsAdmin() != tc.admin {
				t.Fatalf("IsAdmin = %v", actor.IsAdmin())
			}
			if actor.CanReview() != tc.canReview {
				t.Fatalf("CanReview = %v", actor.CanReview())
			}
			if !ValidRole(tc.role) {
				t.Fatal("expected valid role")
			}
		})
	}
	if ValidRole("owner") {
		t.Fatal("unexpected valid role")
	}
}
