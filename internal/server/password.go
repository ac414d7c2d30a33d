// password.go - The password change flow.
//
// Five business rules evaluated in order; the first failure wins, is
// reported inline, and leaves the credential store untouched.
package server

import (
	"net/http"
)

const (
	msgCurrentRequired    = "Current password is required!"
	msgCurrentIncorrect   = "Current password is incorrect!"
	msgNewRequired        = "New password and confirmation are required!"
	msgNewMismatch        = "New passwords do not match!"
	msgNewMustDiffer      = "New password must be different from current password!"
	msgPasswordChanged    = "Password changed successfully!"
	msgPasswordSaveFailed = "Failed to update the password!"
)

// passwordChangeError evaluates the change rules against the store and
// returns the message for the first failing rule, or "" when all pass.
// Later rules are never evaluated once one fails.
func passwordChangeError(creds CredentialStore, username, current, newPass, confirm string) string {
	if current == "" {
		return msgCurrentRequired
	}
	if !creds.Verify(username, current) {
		return msgCurrentIncorrect
	}
	if newPass == "" || confirm == "" {
		return msgNewRequired
	}
	if newPass != confirm {
		return msgNewMismatch
	}
	if newPass == current {
		return msgNewMustDiffer
	}
	return ""
}

// handleChangePassword serves the form (issuing the session's CSRF
// token for embedding) and processes submissions. The POST side runs
// behind the CSRF guard.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderChangePasswordPage(w, r, nil)
	case http.MethodPost:
		s.handleChangePasswordSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	current := r.PostFormValue("currentPassword")
	newPass := r.PostFormValue("newPassword")
	confirm := r.PostFormValue("confirmPassword")

	if msg := passwordChangeError(s.creds, sess.UserID, current, newPass, confirm); msg != "" {
		s.renderChangePasswordPage(w, r, &Message{Type: "error", Text: msg})
		return
	}

	if err := s.creds.SetPassword(sess.UserID, newPass); err != nil {
		Error("password_change_failed", map[string]interface{}{
			"rid":      RequestIDFromContext(r.Context()),
			"username": sess.UserID,
		}, err)
		s.renderChangePasswordPage(w, r, &Message{Type: "error", Text: msgPasswordSaveFailed})
		return
	}

	GetMetrics().RecordPasswordChange()
	Info("password_changed", map[string]interface{}{
		"rid":      RequestIDFromContext(r.Context()),
		"username": sess.UserID,
	})
	s.renderChangePasswordPage(w, r, &Message{Type: "success", Text: msgPasswordChanged})
}

func (s *Server) renderChangePasswordPage(w http.ResponseWriter, r *http.Request, msg *Message) {
	sess, _ := sessionFromContext(r.Context())

	token, err := s.sessions.IssueCSRF(sess.ID)
	if err != nil {
		Error("csrf_issue_failed", map[string]interface{}{
			"rid": RequestIDFromContext(r.Context()),
		}, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "change-password.html", passwordView{
		Username:  sess.UserID,
		Message:   msg,
		CSRFToken: token,
	})
}
