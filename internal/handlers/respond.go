package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bandprep/internal/validation"
)

const maxRequestBody = 10 << 20 // 10 MB, full trees with embedded content can be large

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}
	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondBadRequest maps validation errors to their own message and
// everything else to a generic one
func respondBadRequest(w http.ResponseWriter, err error) {
	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		respondError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		return
	}
	respondError(w, http.StatusBadRequest, "invalid request", "bad request", err)
}

// respondBadRequestOrInternal sends 400 for validation errors and 500 for
// everything else
func respondBadRequestOrInternal(w http.ResponseWriter, err error, logMsg string) {
	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		respondError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "internal server error", logMsg, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(r.Body).Decode(dst)
}
