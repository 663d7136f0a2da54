package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tinyspots/internal/auth"
)

// AuthTokenMiddleware accepts a bearer token only while it belongs to the
// user currently signed in to the session.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
			return
		}

		jwtToken, err := app.authenticator.ValidateToken(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		userID, err := auth.Subject(jwtToken)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		user, ok := app.coordinator.CurrentUser()
		if !ok || user.ID != userID {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("session has ended"))
			return
		}

		ctx := context.WithValue(r.Context(), userCtx, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
			app.rateLimitExceededResponse(w, r, retryAfter.String())
			return
		}

		next.ServeHTTP(w, r)
	})
}
