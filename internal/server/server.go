package server

import (
	"context"
	"html/template"
	"net"
	"net/http"
	"time"
)

// Server is the HTTP server plus the state it guards: the session
// store, the credential store, and the uploads directory.
type Server struct {
	httpServer *http.Server
	cfg        Config
	sessions   *SessionStore
	creds      CredentialStore
	tmpl       *template.Template
	started    time.Time
}

// New builds a Server from cfg. The uploads directory is created if
// absent and the credential store is seeded unless one was injected.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	created, err := ensureUploadDir(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	if created {
		Info("upload_dir_created", map[string]interface{}{"dir": cfg.UploadDir})
	}

	creds := cfg.Creds
	if creds == nil {
		creds, err = NewMemoryCredentialStore(map[string]string{cfg.AdminUser: cfg.AdminPass})
		if err != nil {
			return nil, err
		}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionStore(cfg.SessionTTL),
		creds:    creds,
		tmpl:     tmpl,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/health", s.handleHealth)

	// Session-gated routes. The upload POST validates its CSRF token
	// inside the handler because the multipart body has to be parsed
	// under the size cap first; change-password goes through the guard
	// middleware.
	mux.Handle("/dashboard", s.requireAuth(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/upload", s.requireAuth(http.HandlerFunc(s.handleUpload)))
	mux.Handle("/change-password", s.requireAuth(s.requireCSRF(http.HandlerFunc(s.handleChangePassword))))

	// Uploaded files are public once stored; the URL mirrors the
	// on-disk name. Directory indexes are not served.
	fileServer := http.StripPrefix(uploadsURLPrefix, http.FileServer(http.Dir(cfg.UploadDir)))
	mux.Handle(uploadsURLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == uploadsURLPrefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}))

	// Wrap middleware: requestID -> logging -> headers -> gzip -> mux
	var handler http.Handler = mux
	handler = compressionMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

// Handler exposes the full middleware-wrapped handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Sessions exposes the session store for the cleanup job.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
