// validation.go - Upload filtering and stored-name derivation.
package server

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// allowedUploadTypes is the declared content-type allow-list for the
// upload pipeline. The declared type is trusted; no content sniffing.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// validateUploadType checks the declared content type against the
// allow-list. The error names the offending type so it can be shown
// inline on the upload form.
func validateUploadType(contentType string) error {
	mimeType := strings.TrimSpace(strings.ToLower(contentType))
	// Drop parameters such as "; charset=..."
	if idx := strings.Index(mimeType, ";"); idx > 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if !allowedUploadTypes[mimeType] {
		return fmt.Errorf("File type not allowed. Only JPEG, PNG, and PDF files are permitted. Received: %s", contentType)
	}
	return nil
}

// storedFilename derives the on-disk name for an upload:
// <sanitized-base>-<millisecond-timestamp><original-extension>.
// The timestamp guarantees practical uniqueness; two uploads of the
// same base name collide only within the same millisecond.
func storedFilename(originalName string, now time.Time) string {
	base := sanitizeFilename(filepath.Base(originalName))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%d%s", stem, now.UnixMilli(), ext)
}

// sanitizeFilename removes potentially dangerous characters from
// client-supplied filenames.
func sanitizeFilename(filename string) string {
	// Remove path separators
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	// Trim spaces and dots from start/end
	filename = strings.Trim(filename, " .")

	// Limit length, keeping the extension intact
	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		stem := filename[:len(filename)-len(ext)]
		filename = stem[:255-len(ext)] + ext
	}

	if filename == "" {
		filename = "unnamed"
	}

	return filename
}
