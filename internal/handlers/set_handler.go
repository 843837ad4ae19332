package handlers

import (
	"net/http"

	"bandprep/internal/models"
	"bandprep/internal/service"
)

// SetHandler handles practice set requests
type SetHandler struct {
	setService *service.SetService
}

// NewSetHandler creates a new set handler
func NewSetHandler(setService *service.SetService) *SetHandler {
	return &SetHandler{setService: setService}
}

// Save handles POST /api/sets. The payload is a full tree; any existing set
// with the same id is replaced wholesale.
func (h *SetHandler) Save(w http.ResponseWriter, r *http.Request) {
	var set models.PracticeSet
	if err := decodeJSON(w, r, &set); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "save set decode", err)
		return
	}

	if err := h.setService.Save(r.Context(), &set); err != nil {
		respondBadRequestOrInternal(w, err, "save set")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// List handles GET /api/sets, returning every set with its full tree
func (h *SetHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := h.setService.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load practice sets", "list sets", err)
		return
	}
	respondJSON(w, http.StatusOK, sets)
}

// Get handles GET /api/sets/{id}
func (h *SetHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.setService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load practice set", "get set", err)
		return
	}
	if set == nil {
		respondError(w, http.StatusNotFound, "practice set not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// Delete handles DELETE /api/sets/{id}. Deleting an absent set succeeds.
func (h *SetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.setService.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete practice set", "delete set", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
