package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"assetvault/internal/domain/models"
	"assetvault/internal/httputil"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad signature")
	}
	return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}, nil
}

func (stubVerifier) Close() error { return nil }

func TestAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(httputil.GetUserID(r)))
	})
	h := Auth(stubVerifier{}, logger)(echo)

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantUser string
	}{
		{"valid token", http.MethodGet, "/api/assets/a", "Bearer good", http.StatusOK, "user-1"},
		{"lowercase scheme", http.MethodGet, "/api/assets/a", "bearer good", http.StatusOK, "user-1"},
		{"missing header", http.MethodGet, "/api/assets/a", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "/api/assets/a", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", http.MethodGet, "/api/assets/a", "Bearer bad", http.StatusUnauthorized, ""},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"preflight passes", http.MethodOptions, "/api/assets/a", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && rec.Body.String() != tt.wantUser {
				t.Errorf("user = %q, want %q", rec.Body.String(), tt.wantUser)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/a", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
