// health.go - Component health endpoint.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HealthStatus represents the overall health of the system.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component.
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// ComponentHealth is the health of a single component.
type ComponentHealth struct {
	Status  ComponentStatus `json:"status"`
	Message string          `json:"message,omitempty"`
	Details interface{}     `json:"details,omitempty"`
}

// Health is the complete health check response.
type Health struct {
	Status        HealthStatus               `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version,omitempty"`
	Commit        string                     `json:"commit,omitempty"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]ComponentHealth `json:"components"`
	Metrics       MetricsSnapshot            `json:"metrics"`
}

// handleHealth reports overall and per-component status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := s.checkHealth()

	statusCode := http.StatusOK
	if health.Status != HealthStatusHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) checkHealth() Health {
	components := map[string]ComponentHealth{
		"uploads_dir":      s.checkUploadsDir(),
		"session_store":    s.checkSessions(),
		"credential_store": s.checkCredentials(),
	}

	status := HealthStatusHealthy
	for _, c := range components {
		if c.Status != ComponentStatusUp {
			status = HealthStatusUnhealthy
		}
	}

	return Health{
		Status:        status,
		Timestamp:     time.Now().UTC(),
		Version:       s.cfg.Build.Version,
		Commit:        s.cfg.Build.Commit,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Components:    components,
		Metrics:       GetMetrics().Snapshot(),
	}
}

// checkUploadsDir probes that the uploads directory exists and is
// writable by creating and removing a marker file.
func (s *Server) checkUploadsDir() ComponentHealth {
	info, err := os.Stat(s.cfg.UploadDir)
	if err != nil || !info.IsDir() {
		return ComponentHealth{Status: ComponentStatusDown, Message: "uploads directory missing"}
	}

	probe := filepath.Join(s.cfg.UploadDir, ".health-probe")
	f, err := os.Create(probe)
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "uploads directory not writable"}
	}
	_ = f.Close()
	_ = os.Remove(probe)

	files, err := listUploads(s.cfg.UploadDir)
	if err != nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "uploads directory not listable"}
	}

	return ComponentHealth{
		Status:  ComponentStatusUp,
		Details: map[string]interface{}{"file_count": len(files)},
	}
}

func (s *Server) checkSessions() ComponentHealth {
	return ComponentHealth{
		Status:  ComponentStatusUp,
		Details: map[string]interface{}{"active_sessions": s.sessions.Count()},
	}
}

func (s *Server) checkCredentials() ComponentHealth {
	if s.cfg.AdminUser != "" && !s.creds.Exists(s.cfg.AdminUser) {
		return ComponentHealth{Status: ComponentStatusDown, Message: "seed account missing"}
	}
	health := ComponentHealth{Status: ComponentStatusUp}
	if mem, ok := s.creds.(*MemoryCredentialStore); ok {
		health.Details = map[string]interface{}{"records": mem.Count()}
	}
	return health
}
