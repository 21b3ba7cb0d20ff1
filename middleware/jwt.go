package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"economic/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserIDKey = "userID"
	ctxRolesKey  = "roles"
)

var jwtSecret []byte

// Claims carries sub, email, roles and exp.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserID is the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// InitJWT sets the signing secret.
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken issues an HS256 token for the user valid for ttl.
func GenerateToken(userID, email string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"error":      "Unauthorized",
	})
}

func abortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"statusCode": http.StatusForbidden,
		"message":    "403 Forbidden: insufficient role",
		"error":      "Forbidden",
	})
}

// JWTAuth requires a valid "Authorization: Bearer <jwt>" header.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "401 Unauthorized: missing token")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "401 Unauthorized: malformed authorization header")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "401 Unauthorized: invalid or expired token")
			return
		}

		c.Set(ctxUserIDKey, claims.UserID())
		c.Set(ctxRolesKey, claims.Roles)
		c.Next()
	}
}

// GetCurrentUserID returns the authenticated user id, or "" outside JWTAuth.
func GetCurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// GetCurrentRoles returns the roles of the caller, as claimed by the token or
// as reloaded by RequireUserRole.
func GetCurrentRoles(c *gin.Context) []string {
	return c.GetStringSlice(ctxRolesKey)
}

// SetCurrentUser populates the auth context keys. Used by tests and internal callers.
func SetCurrentUser(c *gin.Context, userID string, roles []string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxRolesKey, roles)
}
