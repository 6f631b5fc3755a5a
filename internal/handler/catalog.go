package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/safebox/gallery/internal/domain"
	"github.com/safebox/gallery/internal/service"
)

// CatalogHandler handles the authenticated catalog mutation endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Create handles POST /api/admin/videos.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateVideoInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	video, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, video)
}

// List handles GET /api/admin/videos (unpaginated admin view).
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.catalog.ListAll(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// Get handles GET /api/admin/videos/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
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

// Update handles PUT /api/admin/videos/{id}.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.UpdateVideoInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	video, err := h.catalog.Update(r.Context(), id, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, video)
}

// Delete handles DELETE /api/admin/videos/{id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"message": "video deleted"})
}

func videoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid video id")
	}
	return id, nil
}
