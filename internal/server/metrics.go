// metrics.go - In-memory application counters.
//
// Mutex-guarded counters recorded by the middleware and handlers and
// reported through the health endpoint. Deliberately not an exported
// metrics surface; this app's observability is console logs plus these
// numbers.
package server

import (
	"sync"
)

// Metrics holds application counters.
type Metrics struct {
	mu sync.RWMutex

	// Auth
	loginSuccessTotal  int64
	loginFailuresTotal int64

	// Uploads
	uploadsTotal      int64
	uploadBytesTotal  int64
	uploadErrorsTotal int64

	// Password changes
	passwordChangesTotal int64

	// HTTP
	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a completed HTTP request by status class.
func (m *Metrics) RecordRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	switch {
	case status >= 500:
		m.requestErrors5xx++
	case status >= 400:
		m.requestErrors4xx++
	}
}

// RecordLoginSuccess records a successful authentication.
func (m *Metrics) RecordLoginSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginSuccessTotal++
}

// RecordLoginFailure records a rejected authentication attempt.
func (m *Metrics) RecordLoginFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginFailuresTotal++
}

// RecordUpload records a persisted upload.
func (m *Metrics) RecordUpload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
}

// RecordUploadError records a rejected or failed upload.
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErrorsTotal++
}

// RecordPasswordChange records a successful credential mutation.
func (m *Metrics) RecordPasswordChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwordChangesTotal++
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	LoginSuccessTotal    int64 `json:"login_success_total"`
	LoginFailuresTotal   int64 `json:"login_failures_total"`
	UploadsTotal         int64 `json:"uploads_total"`
	UploadBytesTotal     int64 `json:"upload_bytes_total"`
	UploadErrorsTotal    int64 `json:"upload_errors_total"`
	PasswordChangesTotal int64 `json:"password_changes_total"`
	RequestsTotal        int64 `json:"requests_total"`
	RequestErrors4xx     int64 `json:"request_errors_4xx"`
	RequestErrors5xx     int64 `json:"request_errors_5xx"`
}

// Snapshot returns a consistent copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		LoginSuccessTotal:    m.loginSuccessTotal,
		LoginFailuresTotal:   m.loginFailuresTotal,
		UploadsTotal:         m.uploadsTotal,
		UploadBytesTotal:     m.uploadBytesTotal,
		UploadErrorsTotal:    m.uploadErrorsTotal,
		PasswordChangesTotal: m.passwordChangesTotal,
		RequestsTotal:        m.requestsTotal,
		RequestErrors4xx:     m.requestErrors4xx,
		RequestErrors5xx:     m.requestErrors5xx,
	}
}

// reset zeroes all counters. Test helper.
func (m *Metrics) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginSuccessTotal = 0
	m.loginFailuresTotal = 0
	m.uploadsTotal = 0
	m.uploadBytesTotal = 0
	m.uploadErrorsTotal = 0
	m.passwordChangesTotal = 0
	m.requestsTotal = 0
	m.requestErrors4xx = 0
	m.requestErrors5xx = 0
}
