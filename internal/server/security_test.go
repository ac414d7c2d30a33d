package server

import (
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestIssueCSRFIsIdempotent(t *testing.T) {
	st := NewSessionStore(time.Minute)
	sess := st.Create()

	first, err := st.IssueCSRF(sess.ID)
	if err != nil {
		t.Fatalf("IssueCSRF: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(first) {
		t.Errorf("token %q is not 32 random bytes hex-encoded", first)
	}

	second, err := st.IssueCSRF(sess.ID)
	if err != nil {
		t.Fatalf("IssueCSRF: %v", err)
	}
	if first != second {
		t.Error("token must not rotate within a session's lifetime")
	}
}

func TestIssueCSRFUnknownSession(t *testing.T) {
	st := NewSessionStore(time.Minute)
	if _, err := st.IssueCSRF("missing"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestCSRFTokensDifferAcrossSessions(t *testing.T) {
	st := NewSessionStore(time.Minute)
	a, _ := st.IssueCSRF(st.Create().ID)
	b, _ := st.IssueCSRF(st.Create().ID)
	if a == b {
		t.Error("two sessions must not share a CSRF token")
	}
}

func TestValidCSRF(t *testing.T) {
	srv := newTestServer(t)
	sessID, token := authedSession(t, srv)
	sess, _ := srv.sessions.Get(sessID)

	tests := []struct {
		name    string
		carried string
		want    bool
	}{
		{"matching token", token, true},
		{"missing token", "", false},
		{"wrong token", "deadbeef", false},
		{"almost right", token[:len(token)-1] + "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postForm("/change-password", url.Values{csrfFieldName: {tt.carried}})
			if got := srv.validCSRF(req, sess); got != tt.want {
				t.Errorf("validCSRF = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidCSRFFailsClosedWithoutBoundToken(t *testing.T) {
	srv := newTestServer(t)
	// Authenticated session that never had a token issued.
	sess := srv.sessions.Create()
	srv.sessions.Authenticate(sess.ID, "admin")

	req := postForm("/change-password", url.Values{csrfFieldName: {"anything"}})
	if srv.validCSRF(req, sess) {
		t.Error("validation must fail when the session has no bound token")
	}
}

func TestCSRFViolationRendersErrorPage(t *testing.T) {
	srv := newTestServer(t)
	sessID, _ := authedSession(t, srv)

	req := withSessionCookie(postForm("/change-password", url.Values{
		csrfFieldName:     {"forged"},
		"currentPassword": {"admin123"},
		"newPassword":     {"newpass99"},
		"confirmPassword": {"newpass99"},
	}), sessID)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != 403 {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), csrfRejectedMessage) {
		t.Error("expected dedicated CSRF error page")
	}
	// The perfectly valid password fields must not have mutated anything.
	if !srv.creds.Verify("admin", "admin123") {
		t.Error("credential store must be untouched after a CSRF violation")
	}
}
