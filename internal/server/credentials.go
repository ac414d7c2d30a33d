// credentials.go - Credential storage and password verification.
//
// The store is an injected abstraction so tests can substitute their
// own seed data without touching process-wide state. Passwords are
// kept as bcrypt hashes; verification is constant-time by virtue of
// bcrypt itself.
package server

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrUserNotFound is returned when a password mutation targets a
// username that was never seeded.
var ErrUserNotFound = errors.New("user not found")

// CredentialStore is the authentication backend used by the login and
// password-change handlers.
type CredentialStore interface {
	// Verify reports whether the username exists and the password
	// matches its stored credential.
	Verify(username, password string) bool
	// SetPassword overwrites the stored credential for an existing
	// username.
	SetPassword(username, password string) error
	// Exists reports whether a credential record exists for username.
	Exists(username string) bool
}

// MemoryCredentialStore keeps username -> bcrypt hash in memory.
// Records are seeded at construction and never deleted.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	hashes map[string]string
}

// NewMemoryCredentialStore seeds a store from plaintext credentials.
// Each seed password is hashed before it is retained.
func NewMemoryCredentialStore(seed map[string]string) (*MemoryCredentialStore, error) {
	s := &MemoryCredentialStore{hashes: make(map[string]string, len(seed))}
	for username, password := range seed {
		if username == "" {
			return nil, errors.New("credential seed contains empty username")
		}
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		s.hashes[username] = hash
	}
	return s, nil
}

func (s *MemoryCredentialStore) Verify(username, password string) bool {
	s.mu.RLock()
	hash, ok := s.hashes[username]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return verifyPassword(password, hash)
}

func (s *MemoryCredentialStore) SetPassword(username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[username]; !ok {
		return ErrUserNotFound
	}
	s.hashes[username] = hash
	return nil
}

func (s *MemoryCredentialStore) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[username]
	return ok
}

// Count returns the number of credential records. Used by the health
// endpoint to confirm the store was seeded.
func (s *MemoryCredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash.
func verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
