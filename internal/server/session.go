// session.go - In-memory session store and cookie helpers.
//
// Sessions are server-side state keyed by a UUID carried in a cookie.
// Handlers receive a value snapshot of the session; all mutation goes
// through store methods under the lock, so concurrent requests never
// share a mutable session object.
package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "fp_session"

var errSessionMissing = errors.New("session not found")

// Session holds authentication and CSRF state for one client.
// UserID is empty while the client is anonymous.
type Session struct {
	ID        string
	UserID    string
	CSRFToken string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Authenticated reports whether the session carries a user identity.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// SessionStore keeps sessions in memory with a sliding idle expiry:
// every successful lookup pushes the expiry window forward.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new anonymous session and returns a snapshot.
func (st *SessionStore) Create() Session {
	now := st.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return *sess
}

// Get returns a snapshot of the session and touches its idle timer.
// Expired sessions are evicted on access and reported as missing.
func (st *SessionStore) Get(id string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return Session{}, false
	}
	now := st.now()
	if now.Sub(sess.LastSeen) > st.ttl {
		delete(st.sessions, id)
		return Session{}, false
	}
	sess.LastSeen = now
	return *sess, true
}

// Authenticate binds a user identity to the session.
func (st *SessionStore) Authenticate(id, userID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return false
	}
	sess.UserID = userID
	return true
}

// Destroy removes the session and everything bound to it, including
// the CSRF token.
func (st *SessionStore) Destroy(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// IssueCSRF returns the session's CSRF token, generating one on first
// use. Idempotent: repeated calls within a session return the same
// token, and the token is never rotated for the session's lifetime.
func (st *SessionStore) IssueCSRF(id string) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return "", errSessionMissing
	}
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}
	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	sess.CSRFToken = token
	return token, nil
}

// CSRFToken returns the bound token without issuing one.
func (st *SessionStore) CSRFToken(id string) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	if !ok || sess.CSRFToken == "" {
		return "", false
	}
	return sess.CSRFToken, true
}

// Count returns the number of live sessions, expired ones included
// until the janitor or an access evicts them.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// evictExpired removes sessions idle past the ttl and returns how many
// were dropped.
func (st *SessionStore) evictExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	evicted := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastSeen) > st.ttl {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}

// setSessionCookie binds the session to the client. The cookie is
// HTTP-only and SameSite=Strict; Secure is left off so the portal runs
// behind plaintext transport (a deployment concern, not a design goal).
func setSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie expires the client's session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
