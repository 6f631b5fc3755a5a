package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/safebox/gallery/internal/domain"
)

var allowedUploadTypes = map[string]string{
	"image/jpeg":    "image",
	"image/png":     "image",
	"image/gif":     "image",
	"image/webp":    "image",
	"image/svg+xml": "image",
	"video/mp4":     "video",
	"video/webm":    "video",
	"video/ogg":     "video",
}

// UploadHandler stores admin-uploaded media files and serves them back.
// The catalog only ever holds the returned URL, never the bytes; an upload
// failure leaves the catalog untouched.
type UploadHandler struct {
	dir     string
	maxSize int64
}

// NewUploadHandler creates an UploadHandler storing files under dir.
func NewUploadHandler(dir string, maxSize int64) (*UploadHandler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &UploadHandler{dir: dir, maxSize: maxSize}, nil
}

// Upload handles POST /api/admin/upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondError(w, domain.ErrValidation("file is required or exceeds the size limit"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	kind, ok := allowedUploadTypes[contentType]
	if !ok {
		RespondError(w, domain.ErrValidation("file type not allowed: "+contentType))
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".bin"
	}
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext

	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		RespondError(w, domain.ErrInternal("create upload file", err))
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dst.Name())
		RespondError(w, copyFailure(err))
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"url":      "/api/uploads/" + name,
		"filename": header.Filename,
		"type":     kind,
		"size":     size,
	})
}

// copyFailure maps a streaming error to the client: hitting the request
// body cap is the caller's fault, anything else (disk full, I/O fault) is
// ours.
func copyFailure(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return domain.ErrValidation("file exceeds the size limit")
	}
	return domain.ErrInternal("store upload", err)
}

// Serve handles GET /api/uploads/{filename}.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || name != filepath.Base(name) {
		RespondError(w, domain.ErrNotFound("file", name))
		return
	}

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		RespondError(w, domain.ErrNotFound("file", name))
		return
	}

	http.ServeFile(w, r, path)
}
