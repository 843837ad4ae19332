package audio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SpeechService converts listening transcripts to MP3 audio, caching the
// result on disk keyed by transcript content
type SpeechService struct {
	audioDir string
}

const ttsRequestTimeout = 10 * time.Second

// speakerVoices are the accents handed out to labeled speakers, in order of
// each speaker's first appearance in the transcript. Unlabeled text uses the
// first voice.
var speakerVoices = []string{"en", "en-GB", "en-AU", "en-IN"}

var speakerLineRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z .'-]{0,40}):\s+(.*)$`)

// NewSpeechService creates a new speech service
func NewSpeechService(audioDir string) *SpeechService {
	return &SpeechService{audioDir: audioDir}
}

// SpokenLine is one utterance of a transcript with its assigned voice
type SpokenLine struct {
	Speaker string
	Text    string
	Voice   string
}

// SplitTranscript breaks a transcript into spoken lines. Lines shaped like
// "Name: text" are attributed to that speaker; each distinct speaker gets a
// voice in order of first appearance. Everything else is narration.
func SplitTranscript(text string) []SpokenLine {
	voiceBySpeaker := map[string]string{}
	nextVoice := 0

	assign := func(speaker string) string {
		if voice, ok := voiceBySpeaker[speaker]; ok {
			return voice
		}
		voice := speakerVoices[nextVoice%len(speakerVoices)]
		voiceBySpeaker[speaker] = voice
		nextVoice++
		return voice
	}

	var lines []SpokenLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := speakerLineRegex.FindStringSubmatch(line); m != nil {
			speaker := strings.TrimSpace(m[1])
			lines = append(lines, SpokenLine{
				Speaker: speaker,
				Text:    strings.TrimSpace(m[2]),
				Voice:   assign(speaker),
			})
			continue
		}

		lines = append(lines, SpokenLine{Text: line, Voice: speakerVoices[0]})
	}
	return lines
}

// Synthesize converts a transcript to a single MP3 file and returns the
// filename (not full path). Repeated calls with the same transcript reuse
// the cached file.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transcript is empty")
	}

	filename := fmt.Sprintf("speech_%s.mp3", contentHash(text))
	outputPath := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(outputPath); err == nil {
		return filename, nil
	}

	lines := SplitTranscript(text)

	// MP3 frames are self-contained, so per-line audio can be appended
	// into one playable file.
	var buf bytes.Buffer
	for _, line := range lines {
		if line.Text == "" {
			continue
		}
		audio, err := fetchGoogleTTS(ctx, line.Text, line.Voice)
		if err != nil {
			return "", fmt.Errorf("failed to generate audio: %w", err)
		}
		buf.Write(audio)
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return filename, nil
}

// AudioPath returns the full path for a previously synthesized filename
func (s *SpeechService) AudioPath(filename string) string {
	return filepath.Join(s.audioDir, filepath.Base(filename))
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

// fetchGoogleTTS uses Google Translate's text-to-speech endpoint, which is
// free and needs no API key
func fetchGoogleTTS(ctx context.Context, text, voice string) ([]byte, error) {
	baseURL := "https://translate.google.com/translate_tts"

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", voice)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	client := &http.Client{Timeout: ttsRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return data, nil
}
