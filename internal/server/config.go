// config.go - Server configuration and startup validation.
//
// Validates everything up front so the process fails fast with a list
// of clear messages rather than hitting runtime surprises.
package server

import (
	"fmt"
	"strings"
	"time"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config carries everything the server needs. Creds may be injected
// for tests; when nil, an in-memory store is seeded from
// AdminUser/AdminPass.
type Config struct {
	Addr           string // e.g. ":3000"
	UploadDir      string
	MaxUploadBytes int64 // 0 = unlimited
	SessionTTL     time.Duration
	AdminUser      string
	AdminPass      string
	Build          BuildInfo
	Creds          CredentialStore
}

// ConfigValidationError is a single configuration problem.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator collects configuration problems.
type ConfigValidator struct {
	errors []ConfigValidationError
}

// AddError adds a validation error.
func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{Field: field, Message: message})
}

// HasErrors reports whether any validation error was collected.
func (v *ConfigValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// ErrorString returns a formatted list of all errors.
func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	v := &ConfigValidator{}

	if strings.TrimSpace(c.Addr) == "" {
		v.AddError("Addr", "listen address must not be empty")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		v.AddError("UploadDir", "uploads directory must not be empty")
	}
	if c.MaxUploadBytes < 0 {
		v.AddError("MaxUploadBytes", "must be zero or positive")
	}
	if c.SessionTTL <= 0 {
		v.AddError("SessionTTL", "session idle timeout must be positive")
	}
	if c.Creds == nil {
		if strings.TrimSpace(c.AdminUser) == "" {
			v.AddError("AdminUser", "seed username must not be empty")
		}
		if c.AdminPass == "" {
			v.AddError("AdminPass", "seed password must not be empty")
		}
	}

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}
