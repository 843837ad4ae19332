package handlers

import (
	"net/http"

	"bandprep/internal/audio"
)

// SpeechHandler handles transcript-to-audio requests
type SpeechHandler struct {
	speechService *audio.SpeechService
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(speechService *audio.SpeechService) *SpeechHandler {
	return &SpeechHandler{speechService: speechService}
}

type speechRequest struct {
	Text string `json:"text"`
}

// Synthesize handles POST /api/speech, streaming back the generated MP3
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "speech decode", err)
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required", "", nil)
		return
	}

	filename, err := h.speechService.Synthesize(r.Context(), req.Text)
	if err != nil {
		respondError(w, http.StatusBadGateway, "speech synthesis is currently unavailable", "synthesize", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, h.speechService.AudioPath(filename))
}
