package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestIDKey
)

// SessionMiddleware extracts the caller's identity from the X-User-ID header
// and the bearer token. Requests without them proceed as guests.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := domain.Guest
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			session = domain.Session{
				UserID: userID,
				Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
			}
		}
		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware tags each request and echoes the id back to the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) domain.Session {
	if session, ok := ctx.Value(sessionKey).(domain.Session); ok {
		return session
	}
	return domain.Guest
}

func requestIDFrom(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
