package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"bandprep/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthHandler handles the Google sign-in flow
type OAuthHandler struct {
	authService *service.AuthService
	config      *oauth2.Config
	baseURL     string
}

// NewOAuthHandler creates a new OAuth handler. Empty credentials disable the
// flow.
func NewOAuthHandler(authService *service.AuthService, clientID, clientSecret, baseURL string) *OAuthHandler {
	return &OAuthHandler{
		authService: authService,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *OAuthHandler) enabled() bool {
	return h.config.ClientID != "" && h.config.ClientSecret != ""
}

// Start handles GET /auth/google/start
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := randomState()
	setTempCookie(w, "oauth_state", state, 10*time.Minute)

	config := *h.config
	config.RedirectURL = h.redirectURL(r)

	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// Callback handles GET /auth/google/callback and responds with a signed
// token for the authenticated user
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondError(w, http.StatusBadRequest, "invalid OAuth state", "", nil)
		return
	}
	clearTempCookie(w, "oauth_state")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.config
	config.RedirectURL = h.redirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to exchange OAuth code", "oauth exchange", err)
		return
	}

	info, err := fetchGoogleUser(ctx, token)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch Google user info", "oauth userinfo", err)
		return
	}

	user, signed, err := h.authService.OAuthLogin(ctx, "google", info.ID, info.Email, info.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, "OAuth login failed", "oauth login", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: signed, User: user})
}

func (h *OAuthHandler) redirectURL(r *http.Request) string {
	baseURL := h.baseURL
	if baseURL == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return baseURL + "/auth/google/callback"
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo request returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, fmt.Errorf("failed to parse userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return googleUserInfo{}, fmt.Errorf("incomplete userinfo response")
	}
	return info, nil
}

func randomState() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setTempCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearTempCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
