package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-test"

func signToken(t *testing.T, userID int, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestJWTAuthRejectsMissingOrForgedToken(t *testing.T) {
	h := JWTAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no debería llegar al handler")
	}))

	// sin header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/me/ratings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// token firmado con otro secreto
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1})
	s, err := forged.SignedString([]byte("otro-secreto"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me/ratings", nil)
	req.Header.Set("Authorization", "Bearer "+s)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthPutsUserInContext(t *testing.T) {
	var gotID int
	var gotRole string
	h := JWTAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole, _ = r.Context().Value(ctxKeyRole).(string)
	}))

	req := httptest.NewRequest("GET", "/me/ratings", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "user"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 42, gotID)
	assert.Equal(t, "user", gotRole)
}

func TestAdminOnlyRequiresAdminRole(t *testing.T) {
	protected := JWTAuth(testSecret)(AdminOnly()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest("POST", "/admin/model/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, "user"))
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, "admin"))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
