package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const AuthUserKey = "auth_user"

// AuthMiddleware validates bearer tokens issued by the platform's identity
// service. Token provisioning lives outside this service; only HMAC
// validation happens here.
type AuthMiddleware struct {
	secret  []byte
	enabled bool
}

// NewAuthMiddleware creates an auth middleware. When disabled (development,
// tests) requests pass through unauthenticated.
func NewAuthMiddleware(secret string, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		secret:  []byte(secret),
		enabled: enabled,
	}
}

// RequireAuth guards a handler behind a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey(AuthUserKey), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

type contextKey string
