package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryokou-app/backend/internal/middleware"
)

// echoEmailHandler writes the context email, or 401 if there is none.
var echoEmailHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_, _ = w.Write([]byte(email))
})

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentityHandler_ValidToken(t *testing.T) {
	h := middleware.NewIdentityHandler("s3cret")(echoEmailHandler)
	token := signToken(t, "s3cret", jwt.MapClaims{
		"email": "Alice@X.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@x.com", rec.Body.String(), "emails are lowercased on the way in")
}

func TestIdentityHandler_MissingToken(t *testing.T) {
	h := middleware.NewIdentityHandler("s3cret")(echoEmailHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityHandler_WrongSecret(t *testing.T) {
	h := middleware.NewIdentityHandler("s3cret")(echoEmailHandler)
	token := signToken(t, "other-secret", jwt.MapClaims{"email": "a@x.com"})

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityHandler_TokenWithoutEmail(t *testing.T) {
	h := middleware.NewIdentityHandler("s3cret")(echoEmailHandler)
	token := signToken(t, "s3cret", jwt.MapClaims{"sub": "123"})

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityHandler_NoSecret_HeaderFallback(t *testing.T) {
	h := middleware.NewIdentityHandler("")(echoEmailHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("X-User-Email", "Dev@Local.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev@local.test", rec.Body.String())
}

func TestIdentityHandler_NoSecret_AnonymousPassThrough(t *testing.T) {
	h := middleware.NewIdentityHandler("")(echoEmailHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The middleware lets the request through; the handler decides.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
