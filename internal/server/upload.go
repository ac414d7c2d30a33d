// upload.go - The upload acceptance pipeline.
//
// One file per request under the "file" form field. The pipeline runs
// filter -> naming -> persist; a filter rejection happens before any
// byte is written to a final destination and leaves no partial file
// behind.
package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// uploadFieldName is the multipart form field carrying the file.
const uploadFieldName = "file"

// multipartMemoryLimit caps how much of a parsed form is held in
// memory before spilling to temp files.
const multipartMemoryLimit = 32 << 20

// handleUpload renders the upload form together with the listing of
// everything already in the uploads directory, and accepts submissions.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderUploadPage(w, r, nil, nil)
	case http.MethodPost:
		s.handleUploadSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUploadSubmit(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			GetMetrics().RecordUploadError()
			s.renderUploadPage(w, r, &Message{
				Type: "error",
				Text: fmt.Sprintf("File is too large! The limit is %d bytes.", s.cfg.MaxUploadBytes),
			}, nil)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// The baseline left file upload outside the CSRF guard even though
	// it mutates state. That gap is closed here: the upload form
	// carries the session token and the submission must echo it.
	sess, ok := sessionFromContext(r.Context())
	if !ok || !s.validCSRF(r, sess) {
		s.renderError(w, http.StatusForbidden, csrfRejectedMessage)
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.renderUploadPage(w, r, &Message{Type: "error", Text: "No file selected!"}, nil)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	stored, err := s.saveUpload(file, header)
	if err != nil {
		GetMetrics().RecordUploadError()
		Warn("upload_rejected", map[string]interface{}{
			"rid":      RequestIDFromContext(r.Context()),
			"filename": header.Filename,
			"reason":   err.Error(),
		})
		s.renderUploadPage(w, r, &Message{Type: "error", Text: err.Error()}, nil)
		return
	}

	Info("upload_stored", map[string]interface{}{
		"rid":  RequestIDFromContext(r.Context()),
		"name": stored.Name,
	})
	s.renderUploadPage(w, r, &Message{Type: "success", Text: "File uploaded successfully!"}, &stored)
}

// saveUpload runs the filter, naming, and persist stages for one file.
// The declared content type decides acceptance; nothing touches the
// uploads directory until the filter has passed.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (StoredFile, error) {
	contentType := header.Header.Get("Content-Type")
	if err := validateUploadType(contentType); err != nil {
		return StoredFile{}, err
	}

	name := storedFilename(header.Filename, time.Now())
	dstPath := filepath.Join(s.cfg.UploadDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return StoredFile{}, errors.New("Failed to store the uploaded file!")
	}

	written, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Don't leave a partial file behind.
		_ = os.Remove(dstPath)
		return StoredFile{}, errors.New("Failed to store the uploaded file!")
	}

	GetMetrics().RecordUpload(written)
	return StoredFile{Name: name, URL: uploadsURLPrefix + name}, nil
}

// renderUploadPage renders the upload view with a fresh directory
// listing, the session's CSRF token, and an optional outcome message.
func (s *Server) renderUploadPage(w http.ResponseWriter, r *http.Request, msg *Message, uploaded *StoredFile) {
	sess, _ := sessionFromContext(r.Context())

	token, err := s.sessions.IssueCSRF(sess.ID)
	if err != nil {
		Error("csrf_issue_failed", map[string]interface{}{
			"rid": RequestIDFromContext(r.Context()),
		}, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	files, err := listUploads(s.cfg.UploadDir)
	if err != nil {
		Error("list_uploads_failed", map[string]interface{}{
			"rid": RequestIDFromContext(r.Context()),
		}, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "upload.html", uploadView{
		Username:     sess.UserID,
		Message:      msg,
		UploadedFile: uploaded,
		Files:        files,
		CSRFToken:    token,
	})
}
