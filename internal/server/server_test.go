package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// newTestServer builds a server with a temp uploads dir and the demo
// admin credential.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		Addr:       ":0",
		UploadDir:  t.TempDir(),
		SessionTTL: 15 * time.Minute,
		AdminUser:  "admin",
		AdminPass:  "admin123",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

// authedSession registers an authenticated session with a bound CSRF
// token and returns its id and token.
func authedSession(t *testing.T, srv *Server) (sessionID, csrf string) {
	t.Helper()
	sess := srv.sessions.Create()
	if !srv.sessions.Authenticate(sess.ID, "admin") {
		t.Fatalf("Authenticate failed")
	}
	token, err := srv.sessions.IssueCSRF(sess.ID)
	if err != nil {
		t.Fatalf("IssueCSRF: %v", err)
	}
	return sess.ID, token
}

func withSessionCookie(req *http.Request, sessionID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	return req
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRootRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id to be set")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				Addr:       ":3000",
				UploadDir:  "uploads",
				SessionTTL: time.Minute,
				AdminUser:  "admin",
				AdminPass:  "secret",
			},
			wantErr: false,
		},
		{
			name: "missing addr",
			cfg: Config{
				UploadDir:  "uploads",
				SessionTTL: time.Minute,
				AdminUser:  "admin",
				AdminPass:  "secret",
			},
			wantErr: true,
		},
		{
			name: "zero session ttl",
			cfg: Config{
				Addr:      ":3000",
				UploadDir: "uploads",
				AdminUser: "admin",
				AdminPass: "secret",
			},
			wantErr: true,
		},
		{
			name: "negative upload cap",
			cfg: Config{
				Addr:           ":3000",
				UploadDir:      "uploads",
				MaxUploadBytes: -1,
				SessionTTL:     time.Minute,
				AdminUser:      "admin",
				AdminPass:      "secret",
			},
			wantErr: true,
		},
		{
			name: "missing seed password without injected store",
			cfg: Config{
				Addr:       ":3000",
				UploadDir:  "uploads",
				SessionTTL: time.Minute,
				AdminUser:  "admin",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
