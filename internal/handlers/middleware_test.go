package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bandprep/internal/models"
	"bandprep/internal/security"
)

func testMiddleware() (*Middleware, *security.TokenManager) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	limiter := security.NewRateLimiter(100, time.Minute)
	return NewMiddleware(tokens, limiter), tokens
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "no claims in context", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	mw, tokens := testMiddleware()
	user := &models.User{ID: "user-1", Role: models.RoleUser}
	valid, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/sets", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.RequireAuth(okHandler)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	mw, tokens := testMiddleware()

	adminToken, err := tokens.Issue(&models.User{ID: "admin-1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	userToken, err := tokens.Issue(&models.User{ID: "user-1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"admin allowed", adminToken, http.StatusOK},
		{"regular user forbidden", userToken, http.StatusForbidden},
		{"anonymous unauthorized", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/sets", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			mw.RequireAdmin(okHandler)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	tokens := security.NewTokenManager("test-secret", time.Hour)
	limiter := security.NewRateLimiter(2, time.Minute)
	mw := NewMiddleware(tokens, limiter)

	handler := mw.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after limit", rec.Code)
	}
}
