package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v *stubValidator) Validate(_ context.Context, _ string) (*JWTClaims, error) {
	return v.claims, v.err
}

// nextHandler is a simple handler that records the context principal.
func nextHandler() (http.Handler, func() (string, bool)) {
	var name string
	var found bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, found = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, func() (string, bool) { return name, found }
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	handler, getPrincipal := nextHandler()
	auth := Auth(&stubValidator{claims: &JWTClaims{
		Subject: "user1",
		Issuer:  "https://issuer.example.com",
		Raw:     map[string]interface{}{"sub": "user1"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()

	auth(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	name, found := getPrincipal()
	require.True(t, found)
	assert.Equal(t, "user1", name)
}

func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	auth := Auth(&stubValidator{err: fmt.Errorf("token expired")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()

	auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Bearer token")
}

func TestAuth_MissingSubjectClaim(t *testing.T) {
	t.Parallel()

	auth := Auth(&stubValidator{claims: &JWTClaims{
		Subject: "",
		Raw:     map[string]interface{}{},
	}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer no-sub-token")
	w := httptest.NewRecorder()

	auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoCredentials(t *testing.T) {
	t.Parallel()

	auth := Auth(&stubValidator{claims: &JWTClaims{Subject: "user1"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NonBearerScheme(t *testing.T) {
	t.Parallel()

	auth := Auth(&stubValidator{claims: &JWTClaims{Subject: "user1"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ErrorBodyCarriesRequestID(t *testing.T) {
	t.Parallel()

	auth := Auth(&stubValidator{err: fmt.Errorf("bad signature")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	req.Header.Set("X-Request-ID", "req-abc-123")
	w := httptest.NewRecorder()

	wrapped := RequestID(auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})))
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-abc-123"`)
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	t.Parallel()

	name, found := PrincipalFromContext(context.Background())

	assert.False(t, found)
	assert.Empty(t, name)
}
