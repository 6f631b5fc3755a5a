package handler

import (
	"net/http"

	"github.com/safebox/gallery/internal/domain"
	"github.com/safebox/gallery/internal/provider"
)

// MetadataHandler exposes the OpenGraph metadata fetcher.
type MetadataHandler struct {
	fetcher *provider.MetadataFetcher
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(fetcher *provider.MetadataFetcher) *MetadataHandler {
	return &MetadataHandler{fetcher: fetcher}
}

// Fetch handles POST /api/utils/metadata.
func (h *MetadataHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		URL string `json:"url"`
	}
	if err := DecodeJSON(r, &input); err != nil || input.URL == "" {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "url is required",
		})
		return
	}

	meta, err := h.fetcher.Fetch(r.Context(), input.URL)
	if err != nil {
		RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	RespondJSON(w, http.StatusOK, meta)
}
