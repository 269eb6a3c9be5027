// Package session maps opaque bearer tokens to player ids.
//
// A token is created at login or registration and destroyed at logout; tokens never
// expire on their own. Store has an in-memory implementation (lost on restart) and a
// Redis implementation for deployments that need sessions to survive restarts.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// TokenBytes is the amount of randomness in a token. Tokens are hex encoded, so a
// token string is twice as long.
const TokenBytes = 32

// Store issues, resolves and revokes session tokens. Implementations must be safe
// for concurrent use.
type Store interface {
	// Issue creates a new token for playerID. A player may hold many tokens at once.
	Issue(ctx context.Context, playerID int64) (string, error)
	// Resolve returns the player a token belongs to. ok is false for unknown tokens.
	Resolve(ctx context.Context, token string) (playerID int64, ok bool, err error)
	// Revoke forgets a token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}

// NewToken returns a fresh random token.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MemoryStore keeps tokens in a map for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]int64)}
}

func (s *MemoryStore) Issue(_ context.Context, playerID int64) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = playerID
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (int64, bool, error) {
	s.mu.RLock()
	id, ok := s.tokens[token]
	s.mu.RUnlock()
	return id, ok, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live tokens.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
