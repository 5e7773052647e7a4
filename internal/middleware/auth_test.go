package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubVerifier struct {
	id  string
	err error
}

func (s stubVerifier) Verify(token string) (string, error) { return s.id, s.err }

func gateTo(verifier TokenVerifier, seen *string) http.Handler {
	return RequireAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := r.Context().Value("user_id").(string); ok {
			*seen = id
		}
	}))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	t.Parallel()

	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gateTo(stubVerifier{id: "u1"}, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != "" {
		t.Fatal("handler must not run without a token")
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	t.Parallel()

	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	gateTo(stubVerifier{err: errors.New("bad token")}, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if seen != "" {
		t.Fatal("handler must not run with an invalid token")
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	t.Parallel()

	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	gateTo(stubVerifier{id: "user-42"}, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != "user-42" {
		t.Fatalf("expected user id in context, got %q", seen)
	}
}
