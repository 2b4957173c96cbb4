package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collection-indexer/internal/api/middleware"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	return key, string(publicPEM)
}

func signToken(t *testing.T, key interface{}, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	key, publicPEM := generateKey(t)
	otherKey, _ := generateKey(t)
	cfg := middleware.AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"key-1", "", "key-2"}}

	valid := signToken(t, key, jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, key, jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	notYetValid := signToken(t, key, jwt.SigningMethodRS256, jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongKey := signToken(t, otherKey, jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: "ops"})
	hmac := signToken(t, []byte("secret"), jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ops"})

	tests := []struct {
		name     string
		header   string
		cfg      middleware.AuthConfig
		success  bool
		authType string
		subject  string
	}{
		{name: "valid jwt", header: "Bearer " + valid, cfg: cfg, success: true, authType: middleware.AuthTypeJWT, subject: "ops"},
		{name: "scheme is case insensitive", header: "bearer " + valid, cfg: cfg, success: true, authType: middleware.AuthTypeJWT, subject: "ops"},
		{name: "expired jwt", header: "Bearer " + expired, cfg: cfg},
		{name: "jwt not yet valid", header: "Bearer " + notYetValid, cfg: cfg},
		{name: "jwt signed by another key", header: "Bearer " + wrongKey, cfg: cfg},
		{name: "hmac jwt", header: "Bearer " + hmac, cfg: cfg},
		{name: "jwt without configured key", header: "Bearer " + valid, cfg: middleware.AuthConfig{APIKeys: []string{"key-1"}}},
		{name: "valid api key", header: "ApiKey key-2", cfg: cfg, success: true, authType: middleware.AuthTypeAPIKey},
		{name: "unknown api key", header: "ApiKey key-3", cfg: cfg},
		{name: "empty configured key never matches", header: "ApiKey ", cfg: cfg},
		{name: "no api keys configured", header: "ApiKey key-1", cfg: middleware.AuthConfig{JWTPublicKey: publicPEM}},
		{name: "missing header", header: "", cfg: cfg},
		{name: "missing credentials", header: "Bearer", cfg: cfg},
		{name: "unsupported scheme", header: "Basic dXNlcjpwYXNz", cfg: cfg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := middleware.Authenticate(tt.header, tt.cfg)

			assert.Equal(t, tt.success, result.Success)
			if !tt.success {
				assert.Error(t, result.Error)
				return
			}
			require.NoError(t, result.Error)
			assert.Equal(t, tt.authType, result.AuthType)
			assert.Equal(t, tt.subject, result.AuthSubject)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/protected", middleware.Auth(middleware.AuthConfig{APIKeys: []string{"key-1"}}), func(c *gin.Context) {
		authType, _ := c.Get(string(middleware.AUTH_TYPE_KEY))
		c.String(http.StatusOK, "%v", authType)
	})

	t.Run("authorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "ApiKey key-1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, middleware.AuthTypeAPIKey, w.Body.String())
	})

	t.Run("rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "ApiKey nope")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
	})
}
