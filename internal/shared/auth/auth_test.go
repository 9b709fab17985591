package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/railmiles/rewards-service/internal/shared/errors"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r)))
	})
}

func TestMiddleware_NoopBearer(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user-123")
	rec := httptest.NewRecorder()

	Middleware(verifier)(echoUser()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user-123" {
		t.Fatalf("expected user-123, got %q", rec.Body.String())
	}
}

func TestMiddleware_HeaderUserID(t *testing.T) {
	verifier, _ := NewVerifier(Config{Mode: ModeNoop})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "user-456")
	rec := httptest.NewRecorder()

	Middleware(verifier)(echoUser()).ServeHTTP(rec, req)

	if rec.Body.String() != "user-456" {
		t.Fatalf("expected user-456, got %q", rec.Body.String())
	}
}

func TestMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	verifier, _ := NewVerifier(Config{Mode: ModeNoop})

	for _, header := range []string{"", "Basic abc", "Bearer    "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		Middleware(verifier)(echoUser()).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		var body apierrors.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("header %q: decode error envelope: %v", header, err)
		}
		if body.Code != apierrors.CodeUnauthorized {
			t.Fatalf("header %q: unexpected code %q", header, body.Code)
		}
	}
}

func TestNewVerifier(t *testing.T) {
	if _, err := NewVerifier(Config{Mode: ModeClerk}); err == nil {
		t.Fatalf("expected clerk mode without JWKS URL to fail")
	}
	if _, err := NewVerifier(Config{Mode: "magic"}); err == nil {
		t.Fatalf("expected unsupported mode to fail")
	}
	if _, err := NewVerifier(Config{Mode: ModeClerk, JWKSURL: "https://example.com/.well-known/jwks.json"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
