package main

import (
	"net/http"
	"strings"

	"taskboard-project/api-gateway/utils"
)

// authMiddleware validates the bearer token once at the edge and forwards
// the caller identity to the services as Role and X-User-Id headers. The
// services trust these headers; they never see the raw token again.
func authMiddleware(next http.Handler, allowedRoles []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if claims.Role == "" {
			http.Error(w, "Missing role in token", http.StatusUnauthorized)
			return
		}

		if !contains(allowedRoles, claims.Role) {
			http.Error(w, "Access forbidden", http.StatusForbidden)
			return
		}

		r.Header.Set("Role", claims.Role)
		r.Header.Set("X-User-Id", claims.Username)
		next.ServeHTTP(w, r)
	})
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
