// views.go - Server-rendered HTML views.
//
// Templates are embedded in the binary; every response is rendered to
// a buffer first so a template failure never emits a half-written page.
package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// parseTemplates loads every embedded page template.
func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Message is an outcome banner shown inline on a form.
type Message struct {
	Type string // "success" or "error"
	Text string
}

type loginView struct {
	Error string
}

type dashboardView struct {
	Username string
}

type uploadView struct {
	Username     string
	Message      *Message
	UploadedFile *StoredFile
	Files        []StoredFile
	CSRFToken    string
}

type passwordView struct {
	Username  string
	Message   *Message
	CSRFToken string
}

type errorView struct {
	Message string
}

// render executes the named page template with data.
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		Error("render_failed", map[string]interface{}{"template": name}, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError renders the dedicated error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "error.html", errorView{Message: message})
}
