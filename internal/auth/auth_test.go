package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hapipet/internal/db"
)

func TestIssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	u := &db.User{ID: "u-1", Email: "marie@example.com", UserType: db.UserTypeDogsitter}

	token, err := tm.Issue(u)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, db.UserTypeDogsitter, claims.UserType)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	u := &db.User{ID: "u-1", UserType: db.UserTypeClient}

	other, err := NewTokenManager("other", time.Hour).Issue(u)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Hour).Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := tm.Issue(u)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Minute).Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	var seen *Claims
	h := Middleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tm.Issue(&db.User{ID: "u-2", UserType: db.UserTypeClient})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u-2", seen.UserID)
}

func TestRequireType(t *testing.T) {
	h := RequireType(db.UserTypeDogsitter, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPut, "/api/sitters/me", nil)
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(WithClaims(req.Context(), &Claims{UserID: "c", UserType: db.UserTypeClient})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, req.WithContext(WithClaims(req.Context(), &Claims{UserID: "s", UserType: db.UserTypeDogsitter})))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
