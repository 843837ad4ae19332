package handlers

import (
	"errors"
	"net/http"

	"bandprep/internal/service"
	"bandprep/internal/validation"
)

// EvaluationHandler handles answer scoring requests
type EvaluationHandler struct {
	evaluationService *service.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluationService *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

type evaluationRequest struct {
	TaskPrompt string `json:"taskPrompt"`
	Answer     string `json:"answer"`
}

// Evaluate handles POST /api/evaluate. A scoring backend failure is the
// collaborator's fault, not the caller's, and maps to 502.
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "evaluate decode", err)
		return
	}

	eval, err := h.evaluationService.Evaluate(r.Context(), req.TaskPrompt, req.Answer)
	if err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		if errors.Is(err, service.ErrScoringUnavailable) {
			respondError(w, http.StatusBadGateway, "scoring is currently unavailable", "evaluate", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "evaluation failed", "evaluate", err)
		return
	}

	respondJSON(w, http.StatusOK, eval)
}
