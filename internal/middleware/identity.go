package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const emailKey contextKey = "userEmail"

// EmailFromContext returns the authenticated caller's email, lowercased.
// The second return is false when the request carried no identity.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

// NewIdentityHandler returns a middleware that resolves the caller's email
// and stores it on the request context.
//
// With a secret configured, the email comes from the "email" claim of an
// HS256 bearer token; a missing or invalid token is rejected with 401.
// With no secret (local development), the X-User-Email header is trusted
// instead, and requests without it pass through anonymously — handlers that
// need an identity respond 401 themselves via EmailFromContext.
func NewIdentityHandler(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				if email := strings.TrimSpace(r.Header.Get("X-User-Email")); email != "" {
					r = r.WithContext(withEmail(r.Context(), email))
				}
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			email, err := emailFromToken(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withEmail(r.Context(), email)))
		})
	}
}

func withEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, strings.ToLower(strings.TrimSpace(email)))
}

// emailFromToken validates an HS256 token and extracts its email claim.
func emailFromToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token has no email claim")
	}
	return email, nil
}
