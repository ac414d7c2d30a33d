package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func sessionCookieFrom(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "admin123"},
		{"wrong password", "admin", "wrong"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, postForm("/login", url.Values{
				"username": {tt.username},
				"password": {tt.password},
			}))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			// Same generic message for unknown user and wrong password.
			if !strings.Contains(rr.Body.String(), "Invalid username or password") {
				t.Error("expected generic invalid-credentials message")
			}
			if c := sessionCookieFrom(rr); c != nil && c.MaxAge >= 0 && c.Value != "" {
				if sess, ok := srv.sessions.Get(c.Value); ok && sess.Authenticated() {
					t.Error("failed login must not produce an authenticated session")
				}
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, postForm("/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
	}))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}

	c := sessionCookieFrom(rr)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HTTP-only")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Error("session cookie must be SameSite=Strict")
	}

	sess, ok := srv.sessions.Get(c.Value)
	if !ok {
		t.Fatal("cookie does not resolve to a live session")
	}
	if sess.UserID != "admin" {
		t.Errorf("session identity = %q, want admin", sess.UserID)
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	if strings.Contains(rr.Body.String(), "Welcome") {
		t.Error("dashboard content must never render for anonymous requests")
	}
}

func TestDashboardRendersForAuthenticatedSession(t *testing.T) {
	srv := newTestServer(t)
	sessID, _ := authedSession(t, srv)

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sessID)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Welcome, admin") {
		t.Error("expected dashboard greeting")
	}
}

func TestLoginRegeneratesSessionID(t *testing.T) {
	srv := newTestServer(t)
	anon := srv.sessions.Create()

	req := withSessionCookie(postForm("/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
	}), anon.ID)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	c := sessionCookieFrom(rr)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	if c.Value == anon.ID {
		t.Error("login must not promote the pre-login session ID")
	}
	if _, ok := srv.sessions.Get(anon.ID); ok {
		t.Error("pre-login session must be destroyed at login")
	}
	sess, ok := srv.sessions.Get(c.Value)
	if !ok || sess.UserID != "admin" {
		t.Errorf("new cookie must resolve to an admin session, got %+v ok=%v", sess, ok)
	}
}

func TestAuthenticatedRequestRefreshesCookie(t *testing.T) {
	srv := newTestServer(t)
	sessID, _ := authedSession(t, srv)

	base := time.Now()
	now := base
	srv.sessions.now = func() time.Time { return now }

	dashboard := func() *httptest.ResponseRecorder {
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sessID)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr
	}

	rr := dashboard()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	c := sessionCookieFrom(rr)
	if c == nil {
		t.Fatal("authenticated request must re-issue the session cookie")
	}
	if c.Value != sessID {
		t.Errorf("refreshed cookie value = %q, want the session ID", c.Value)
	}
	if want := int((15 * time.Minute).Seconds()); c.MaxAge != want {
		t.Errorf("refreshed cookie MaxAge = %d, want %d", c.MaxAge, want)
	}

	// A minute before the cookie issued at login would lapse, activity
	// hands out a fresh one, so the client window slides with the
	// store's.
	now = base.Add(14 * time.Minute)
	rr = dashboard()
	if rr.Code != http.StatusOK {
		t.Fatalf("active session at 14m: expected 200, got %d", rr.Code)
	}
	if c := sessionCookieFrom(rr); c == nil || c.MaxAge != int((15*time.Minute).Seconds()) {
		t.Error("activity must re-issue the cookie with a full idle window")
	}

	// 28 minutes after login but only 14 since the last request.
	now = base.Add(28 * time.Minute)
	if rr := dashboard(); rr.Code != http.StatusOK {
		t.Errorf("slid session at 28m: expected 200, got %d", rr.Code)
	}
}

func TestStaleSessionCookieRedirects(t *testing.T) {
	srv := newTestServer(t)

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "not-a-session")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	srv := newTestServer(t)
	sessID, _ := authedSession(t, srv)

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/logout", nil), sessID)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}

	if _, ok := srv.sessions.Get(sessID); ok {
		t.Error("logout must destroy the session server-side")
	}
	if _, ok := srv.sessions.CSRFToken(sessID); ok {
		t.Error("logout must drop the CSRF token with the session")
	}

	// The old cookie no longer grants access.
	req = withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sessID)
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Errorf("expected 302 after logout, got %d", rr.Code)
	}
}
