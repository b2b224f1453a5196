package issues

import (
	"testing"
	"time"
)

func TestTokenRegistryIssueAndValidate(t *testing.T) {
	r := NewTokenRegistry(time.Minute)

	token, err := r.Issue()
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}
	if len(token) != 32 {
		t.Fatalf("expected 32 hex chars, got %q", token)
	}
	if !r.Valid(token) {
		t.Fatalf("expected freshly minted token to validate")
	}
	if r.Valid("") {
		t.Fatalf("expected empty token to fail")
	}
	if r.Valid("deadbeef") {
		t.Fatalf("expected unknown token to fail")
	}
}

func TestTokenRegistryDistinctTokens(t *testing.T) {
	r := NewTokenRegistry(time.Minute)
	a, _ := r.Issue()
	b, _ := r.Issue()
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 live tokens, got %d", r.Len())
	}
}

func TestTokenRegistryExpiry(t *testing.T) {
	r := NewTokenRegistry(time.Minute)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	token, err := r.Issue()
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}
	if !r.Valid(token) {
		t.Fatalf("expected token valid before expiry")
	}

	now = now.Add(2 * time.Minute)
	if r.Valid(token) {
		t.Fatalf("expected token expired")
	}
	if r.Len() != 0 {
		t.Fatalf("expected expired token pruned, got %d", r.Len())
	}
}

func TestTokenRegistryRevoke(t *testing.T) {
	r := NewTokenRegistry(time.Minute)
	token, _ := r.Issue()
	r.Revoke(token)
	if r.Valid(token) {
		t.Fatalf("expected revoked token to fail")
	}
}

func TestTokenRegistryDefaultTTL(t *testing.T) {
	r := NewTokenRegistry(0)
	if r.ttl != DefaultTokenTTL {
		t.Fatalf("expected default TTL, got %v", r.ttl)
	}
}
