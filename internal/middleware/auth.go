package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"coverline/internal/domain"
)

const (
	ContextKeyReviewerID = "reviewer_id"
	ContextKeyClaims     = "claims"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": msg},
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// SharedSecret returns middleware that requires the bearer token to equal
// secret. An empty secret disables the check.
func SharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			abortUnauthorized(c, "invalid shared secret")
			return
		}
		c.Next()
	}
}

// ReviewerAuth returns middleware that validates an HS256 reviewer token and
// injects the reviewer reference taken from the subject claim.
func ReviewerAuth(secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}
		if len(key) == 0 {
			abortUnauthorized(c, "reviewer authentication is not configured")
			return
		}

		claims, err := parseReviewerToken(token, key, opts)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyReviewerID, claims.Subject)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func parseReviewerToken(tokenString string, key []byte, opts []jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing reviewer token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, errors.New("parsing reviewer token: missing subject")
	}
	return claims, nil
}

// GetReviewerID extracts the reviewer reference from the Gin context.
func GetReviewerID(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyReviewerID)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}
