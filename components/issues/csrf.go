package issues

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultTokenTTL is how long a minted CSRF token stays valid.
const DefaultTokenTTL = 2 * time.Hour

// TokenRegistry mints and validates the per-page CSRF tokens embedded in the
// issues page. Tokens expire after a TTL and are pruned lazily on access.
type TokenRegistry struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	active map[string]time.Time
}

// NewTokenRegistry returns a registry whose tokens expire after ttl. A
// non-positive ttl falls back to DefaultTokenTTL.
func NewTokenRegistry(ttl time.Duration) *TokenRegistry {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenRegistry{
		ttl:    ttl,
		now:    time.Now,
		active: map[string]time.Time{},
	}
}

// Issue mints a new token and records its expiry.
func (r *TokenRegistry) Issue() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("issues: mint token: %w", err)
	}
	token := hex.EncodeToString(raw)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.active[token] = r.now().Add(r.ttl)
	return token, nil
}

// Valid reports whether token was minted by this registry and has not expired.
func (r *TokenRegistry) Valid(token string) bool {
	if token == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	_, ok := r.active[token]
	return ok
}

// Revoke forgets a token before its expiry.
func (r *TokenRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, token)
}

// Len returns the number of live tokens.
func (r *TokenRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.active)
}

// prune drops expired tokens. Callers must hold the mutex.
func (r *TokenRegistry) prune() {
	now := r.now()
	for token, expiry := range r.active {
		if now.After(expiry) {
			delete(r.active, token)
		}
	}
}
