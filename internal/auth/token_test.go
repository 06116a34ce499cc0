package auth

import (
	"testing"

	"github.com/spec-kit/content-crm/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("member-1", domain.RoleManager)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Error("expiry should be set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.MemberID != "member-1" {
		t.Errorf("member = %q, want member-1", claims.MemberID)
	}
	if claims.Role != domain.RoleManager {
		t.Errorf("role = %q, want MANAGER", claims.Role)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken("member-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenManager("secret-b", 30).ParseToken(token); err == nil {
		t.Error("token signed with another secret should not parse")
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret", 30).ParseToken("not-a-token"); err == nil {
		t.Error("garbage should not parse")
	}
}

func TestPasswordHasher_VerifyMatches(t *testing.T) {
	hasher := NewPasswordHasher(4)

	hash, err := hasher.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !hasher.Verify(hash, "hunter22") {
		t.Error("correct password should verify")
	}
	if hasher.Verify(hash, "hunter23") {
		t.Error("wrong password should not verify")
	}
}
