package handlers

import (
	"net/http"

	"bandprep/internal/models"
	"bandprep/internal/service"
)

// AttemptHandler handles attempt recording and history requests
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new attempt handler
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Create handles POST /api/attempts. The attempt is recorded under the
// authenticated user regardless of any user id in the payload.
func (h *AttemptHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required", "", nil)
		return
	}

	var attempt models.Attempt
	if err := decodeJSON(w, r, &attempt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "create attempt decode", err)
		return
	}
	attempt.UserID = claims.Subject

	if err := h.attemptService.Record(r.Context(), &attempt); err != nil {
		respondBadRequestOrInternal(w, err, "record attempt")
		return
	}

	respondJSON(w, http.StatusCreated, attempt)
}

// ListByUser handles GET /api/attempts/{userId}. Users see only their own
// history; admins see anyone's.
func (h *AttemptHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "authentication required", "", nil)
		return
	}

	userID := r.PathValue("userId")
	if userID != claims.Subject && claims.Role != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "cannot view another user's attempts", "", nil)
		return
	}

	attempts, err := h.attemptService.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load attempts", "list attempts", err)
		return
	}
	if attempts == nil {
		attempts = []models.AttemptSummary{}
	}
	respondJSON(w, http.StatusOK, attempts)
}
