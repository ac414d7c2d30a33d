// files.go - Uploads directory bootstrap and listing.
package server

import (
	"os"
)

// uploadsURLPrefix is the public path uploaded files are served from.
const uploadsURLPrefix = "/uploads/"

// StoredFile is one persisted upload as shown on the upload page.
type StoredFile struct {
	Name string
	URL  string
}

// ensureUploadDir creates the uploads directory if it is absent.
// Reports whether it had to be created.
func ensureUploadDir(dir string) (created bool, err error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// listUploads scans the uploads directory and returns every file in it
// with its servable URL. There is no ownership model: any authenticated
// user sees all prior uploads. A listing taken while an upload is in
// flight may or may not include it.
func listUploads(dir string) ([]StoredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, StoredFile{
			Name: e.Name(),
			URL:  uploadsURLPrefix + e.Name(),
		})
	}
	return files, nil
}
