package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/example/quickbite/internal/session"
)

const SessionCookieName = "qb_session"

type contextKey string

const SessionContextKey contextKey = "session"

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken reads the session token from the cookie or a Bearer header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionMiddleware attaches session claims to every request. A missing,
// expired or forged token starts a new session for defaultUserID.
func SessionMiddleware(tokens *session.TokenService, defaultUserID int, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *session.Claims
			if tokenString := ExtractToken(r); tokenString != "" {
				if c, err := tokens.Validate(tokenString); err == nil {
					claims = c
				}
			}

			if claims == nil {
				tokenString, c, err := tokens.Issue(defaultUserID)
				if err != nil {
					log.Printf("[Session] Failed to issue token: %v", err)
					respondError(w, "could not start session", http.StatusInternalServerError)
					return
				}
				claims = c
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    tokenString,
					Path:     "/",
					MaxAge:   int(tokens.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExpireSessionCookie tells the browser to drop the session cookie
func ExpireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func GetSession(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*session.Claims)
	return claims, ok
}
