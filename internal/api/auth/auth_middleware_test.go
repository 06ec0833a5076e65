package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/trip-tailor/internal/types"
)

func signTestToken(t *testing.T, cfg testTokenOpts) string {
	t.Helper()
	now := time.Now()
	claims := types.Claims{
		UserID: cfg.userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.secret))
	require.NoError(t, err)
	return token
}

type testTokenOpts struct {
	userID string
	issuer string
	secret string
	ttl    time.Duration
}

func TestAuthenticate(t *testing.T) {
	logger := slog.Default()
	jwtCfg := testJWTConfig()
	userID := uuid.NewString()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, userID, id)
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(logger, jwtCfg)(next)

	t.Run("ValidToken", func(t *testing.T) {
		token := signTestToken(t, testTokenOpts{
			userID: userID, issuer: jwtCfg.Issuer, secret: jwtCfg.SecretKey, ttl: time.Minute,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signTestToken(t, testTokenOpts{
			userID: userID, issuer: jwtCfg.Issuer, secret: jwtCfg.SecretKey, ttl: -time.Minute,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signTestToken(t, testTokenOpts{
			userID: userID, issuer: jwtCfg.Issuer, secret: "some-other-secret", ttl: time.Minute,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		token := signTestToken(t, testTokenOpts{
			userID: userID, issuer: "someone-else", secret: jwtCfg.SecretKey, ttl: time.Minute,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
