package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/auth"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth проверяет Bearer-токен и кладёт id пользователя в контекст.
// Дальше сервисы доверяют этому id как проверенному.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := auth.BearerToken(r)
		if token == "" {
			httputils.ResponseError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id, 0 when absent.
func UserID(r *http.Request) uint {
	id, _ := r.Context().Value(userIDKey).(uint)
	return id
}

func RequestLogger(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
