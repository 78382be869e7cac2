package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// ErrMissingFile is returned by UploadStaging.Save when the request carries
// no file under the requested field name.
var ErrMissingFile = errors.New("handlers: missing upload file")

// UploadStaging writes multipart file parts to a local scratch directory so
// the asset store can ingest them from disk. Callers are responsible for
// removing staged files once the upload has been handed off.
type UploadStaging struct {
	Dir      string
	MaxBytes int64
}

// Save stages the named file part and returns the path of the staged copy.
// It returns ErrMissingFile when the part is absent.
func (s UploadStaging) Save(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(s.MaxBytes); err != nil {
			return "", fmt.Errorf("parse multipart form: %w", err)
		}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrMissingFile
		}
		return "", fmt.Errorf("read form file %q: %w", field, err)
	}
	defer file.Close()
	return s.stage(file, header)
}

// SaveOptional behaves like Save but reports an absent part as an empty path
// with no error.
func (s UploadStaging) SaveOptional(r *http.Request, field string) (string, error) {
	path, err := s.Save(r, field)
	if errors.Is(err, ErrMissingFile) {
		return "", nil
	}
	return path, err
}

func (s UploadStaging) stage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && header.Size > s.MaxBytes {
		return "", fmt.Errorf("file %q exceeds upload limit of %d bytes", header.Filename, s.MaxBytes)
	}
	ext := filepath.Ext(header.Filename)
	staged, err := os.CreateTemp(s.Dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return staged.Name(), nil
}
