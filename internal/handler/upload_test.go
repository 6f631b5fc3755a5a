package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/safebox/gallery/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadFixture(t *testing.T) *UploadHandler {
	t.Helper()
	h, err := NewUploadHandler(t.TempDir(), 1<<20)
	require.NoError(t, err)
	return h
}

func multipartUpload(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUpload(t *testing.T) {
	t.Run("accepts an image and returns its serving URL", func(t *testing.T) {
		h := newUploadFixture(t)
		w := httptest.NewRecorder()
		h.Upload(w, multipartUpload(t, "cover.png", "image/png", "png-bytes"))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "cover.png", body["filename"])
		assert.Equal(t, "image", body["type"])
		assert.True(t, strings.HasPrefix(body["url"].(string), "/api/uploads/"))
		assert.True(t, strings.HasSuffix(body["url"].(string), ".png"))
	})

	t.Run("accepts a video", func(t *testing.T) {
		h := newUploadFixture(t)
		w := httptest.NewRecorder()
		h.Upload(w, multipartUpload(t, "clip.mp4", "video/mp4", "mp4-bytes"))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "video", body["type"])
	})

	t.Run("rejects disallowed content type", func(t *testing.T) {
		h := newUploadFixture(t)
		w := httptest.NewRecorder()
		h.Upload(w, multipartUpload(t, "script.sh", "application/x-sh", "#!/bin/sh"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("rejects missing file field", func(t *testing.T) {
		h := newUploadFixture(t)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("note", "no file here"))
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		h.Upload(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects body over the size limit", func(t *testing.T) {
		h, err := NewUploadHandler(t.TempDir(), 64)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		h.Upload(w, multipartUpload(t, "big.png", "image/png", strings.Repeat("x", 4096)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCopyFailure(t *testing.T) {
	t.Run("body cap is the client's fault", func(t *testing.T) {
		err := copyFailure(&http.MaxBytesError{Limit: 64})
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("storage fault is ours", func(t *testing.T) {
		err := copyFailure(io.ErrUnexpectedEOF)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
		assert.Equal(t, 500, appErr.Status)
	})
}

func TestServe(t *testing.T) {
	serveRequest := func(h *UploadHandler, name string) *httptest.ResponseRecorder {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("filename", name)
		r := httptest.NewRequest(http.MethodGet, "/api/uploads/"+name, nil)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		w := httptest.NewRecorder()
		h.Serve(w, r)
		return w
	}

	t.Run("serves an uploaded file", func(t *testing.T) {
		h := newUploadFixture(t)
		w := httptest.NewRecorder()
		h.Upload(w, multipartUpload(t, "cover.png", "image/png", "png-bytes"))
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		name := strings.TrimPrefix(body["url"].(string), "/api/uploads/")

		res := serveRequest(h, name)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "png-bytes", res.Body.String())
	})

	t.Run("unknown file returns 404", func(t *testing.T) {
		h := newUploadFixture(t)
		res := serveRequest(h, "nope.png")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("path traversal returns 404", func(t *testing.T) {
		h := newUploadFixture(t)
		res := serveRequest(h, "../secrets.txt")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
