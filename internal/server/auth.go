// auth.go - Session guard and the login/logout flow.
//
// Authentication is a flat credential lookup: a POST of username and
// password that verifies against the store binds the session identity
// and redirects to the dashboard. Mismatches re-render the login form
// with a single generic message so usernames cannot be enumerated.
package server

import (
	"context"
	"net/http"
	"strings"
)

type sessionCtxKey struct{}

// sessionFromContext returns the session snapshot placed on the
// request context by requireAuth.
func sessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(Session)
	return sess, ok
}

// sessionFromRequest resolves the request's cookie to a live session.
// Touching the session slides its idle expiry forward.
func (s *Server) sessionFromRequest(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return Session{}, false
	}
	return s.sessions.Get(c.Value)
}

// requireAuth lets authenticated requests through to their handler and
// short-circuits everything else with a redirect to the login entry
// point. The redirect is the only failure signal; no error is raised.
// Each pass re-issues the session cookie so the client-side lifetime
// slides with activity the same way the store's idle window does.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessionFromRequest(r)
		if !ok || !sess.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		setSessionCookie(w, sess.ID, s.cfg.SessionTTL)
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleRoot redirects the bare root to the login page; anything else
// under / is unknown.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleLogin serves the login form and processes submissions.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, "login.html", loginView{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if !s.creds.Verify(username, password) {
		GetMetrics().RecordLoginFailure()
		Warn("login_failed", map[string]interface{}{
			"rid":      RequestIDFromContext(r.Context()),
			"username": username,
		})
		// Same message for unknown user and wrong password.
		s.render(w, http.StatusOK, "login.html", loginView{Error: "Invalid username or password"})
		return
	}

	// A fresh session ID is issued at the privilege boundary; whatever
	// session the client arrived with is discarded so a pre-login ID
	// can never be promoted.
	if c, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(c.Value)
	}
	sess := s.sessions.Create()
	s.sessions.Authenticate(sess.ID, username)
	setSessionCookie(w, sess.ID, s.cfg.SessionTTL)

	GetMetrics().RecordLoginSuccess()
	Info("login_ok", map[string]interface{}{
		"rid":      RequestIDFromContext(r.Context()),
		"username": username,
	})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout destroys the session state entirely (identity, CSRF
// token, all session data) and sends the client back to login.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Destroy(c.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleDashboard renders the authenticated landing page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, _ := sessionFromContext(r.Context())
	s.render(w, http.StatusOK, "dashboard.html", dashboardView{Username: sess.UserID})
}
