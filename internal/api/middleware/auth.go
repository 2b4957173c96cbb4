package middleware

import (
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_TYPE_KEY    contextKey = "auth_type"
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"
)

const (
	AuthTypeJWT    = "jwt"
	AuthTypeAPIKey = "apikey"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// AuthResult holds the result of authentication
type AuthResult struct {
	Success     bool
	AuthType    string
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	Error       error
}

// authenticator holds the parsed credentials of an AuthConfig
type authenticator struct {
	publicKey    *rsa.PublicKey
	publicKeyErr error
	apiKeys      [][]byte
}

func newAuthenticator(cfg AuthConfig) *authenticator {
	a := &authenticator{}
	if cfg.JWTPublicKey == "" {
		a.publicKeyErr = errors.New("JWT public key not configured")
	} else if key, err := parseRSAPublicKey(cfg.JWTPublicKey); err != nil {
		a.publicKeyErr = fmt.Errorf("failed to parse RSA public key: %w", err)
	} else {
		a.publicKey = key
	}
	for _, key := range cfg.APIKeys {
		if key != "" {
			a.apiKeys = append(a.apiKeys, []byte(key))
		}
	}
	return a
}

// Authenticate validates the Authorization header and returns the authentication result
func Authenticate(authHeader string, cfg AuthConfig) AuthResult {
	return newAuthenticator(cfg).authenticate(authHeader)
}

func (a *authenticator) authenticate(authHeader string) AuthResult {
	if authHeader == "" {
		return AuthResult{Error: errors.New("missing Authorization header")}
	}

	scheme, credentials, ok := strings.Cut(authHeader, " ")
	if !ok || credentials == "" {
		return AuthResult{Error: errors.New("invalid Authorization header format")}
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		claims, err := a.validateJWT(credentials)
		if err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{
			Success:     true,
			AuthType:    AuthTypeJWT,
			Claims:      claims,
			AuthSubject: claims.Subject,
		}

	case "apikey":
		if err := a.validateAPIKey(credentials); err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{Success: true, AuthType: AuthTypeAPIKey}

	default:
		return AuthResult{Error: fmt.Errorf("unsupported authorization type: %s", scheme)}
	}
}

// Auth returns a gin middleware accepting either an RS256 bearer token or an API key
func Auth(cfg AuthConfig) gin.HandlerFunc {
	a := newAuthenticator(cfg)

	return func(c *gin.Context) {
		result := a.authenticate(c.GetHeader("Authorization"))

		if !result.Success {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(AUTH_TYPE_KEY), result.AuthType)
		if result.Claims != nil {
			c.Set(string(JWT_CLAIMS_KEY), result.Claims)
		}
		if result.AuthSubject != "" {
			c.Set(string(AUTH_SUBJECT_KEY), result.AuthSubject)
		}

		logger.DebugCtx(c.Request.Context(), "Authentication successful",
			zap.String("auth_type", result.AuthType),
			zap.String("subject", result.AuthSubject),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// validateJWT validates an RSA signed token; expiry and not-before are enforced by the parser
func (a *authenticator) validateJWT(tokenString string) (*jwt.RegisteredClaims, error) {
	if a.publicKeyErr != nil {
		return nil, a.publicKeyErr
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// validateAPIKey compares the key against every configured key in constant time
func (a *authenticator) validateAPIKey(apiKey string) error {
	if len(a.apiKeys) == 0 {
		return errors.New("no API keys configured")
	}

	candidate := []byte(apiKey)
	for _, key := range a.apiKeys {
		if subtle.ConstantTimeCompare(candidate, key) == 1 {
			return nil
		}
	}
	return errors.New("invalid API key")
}

// parseRSAPublicKey parses an RSA public key in PKIX or PKCS1 PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
