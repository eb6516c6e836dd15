package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const SiteContextKey contextKey = "site"

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

// Middleware admits requests carrying a valid site token.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Unauthorized")
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if strings.HasPrefix(tokenStr, "sk_") {
				unauthorized(w, "Organization API keys cannot access site resources")
				return
			}
			claims, err := ValidateToken(secret, tokenStr)
			if err != nil {
				unauthorized(w, "Invalid site token")
				return
			}
			ctx := context.WithValue(r.Context(), SiteContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSite(ctx context.Context) *Claims {
	claims, _ := ctx.Value(SiteContextKey).(*Claims)
	return claims
}

// SiteID returns the site of the request, or "" outside the middleware.
func SiteID(ctx context.Context) string {
	if c := GetSite(ctx); c != nil {
		return c.SiteID
	}
	return ""
}
