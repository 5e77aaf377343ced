package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPMiddleware authenticates every request that can change ledger state.
// Reads pass through; a read that carries a valid token still gets its
// claims attached.
func HTTPMiddleware(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected := isProtectedRequest(r)
		if !protected && r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractTokenFromHeader(r)
		if err != nil {
			if !protected {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			if !protected {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "", fmt.Errorf("invalid authorization format")
	}

	return tokenString, nil
}

// isProtectedRequest reports whether r targets a mutating route.
func isProtectedRequest(r *http.Request) bool {
	if !strings.HasPrefix(r.URL.Path, "/v1/") {
		return false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
