package handler

import (
	"net/http"
	"strconv"

	"github.com/safebox/gallery/internal/service"
)

// PublicHandler handles the read-only public catalog endpoints.
type PublicHandler struct {
	catalog *service.CatalogService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(catalog *service.CatalogService) *PublicHandler {
	return &PublicHandler{catalog: catalog}
}

// List handles GET /api/videos?offset=&limit=. Defaults to the first page
// of six, matching the gallery home page.
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	videos, err := h.catalog.List(r.Context(), offset, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	total, err := h.catalog.Count(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"videos": videos,
		"total":  total,
	})
}

// Get handles GET /api/videos/{id}, resolving the next pointer to a summary
// for the player page.
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	detail, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, detail)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
