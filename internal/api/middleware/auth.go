package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bookline/booking-engine/internal/api/handlers"
)

type ctxKey string

const (
	userIDKey   ctxKey = "userID"
	tenantIDKey ctxKey = "tenantID"

	headerUserID   = "X-User-ID"
	headerTenantID = "X-Tenant-ID"
)

const (
	msgMissingUserID   = "отсутствует заголовок X-User-ID"
	msgInvalidUserID   = "некорректный заголовок X-User-ID"
	msgMissingTenantID = "отсутствует заголовок X-Tenant-ID"
	msgInvalidTenantID = "некорректный заголовок X-Tenant-ID"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth извлекает идентификаторы вызывающего из заголовков.
// Проверка подписи/токена происходит на шлюзе до этого сервиса;
// здесь заголовки считаются доверенными, но обязательными.
func Auth(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := r.Header.Get(headerUserID)
			if userIDStr == "" {
				logger.Warn("Auth: missing %s for %s %s", headerUserID, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingUserID)
				return
			}

			userID, err := strconv.ParseInt(userIDStr, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("Auth: invalid %s=%q for %s %s", headerUserID, userIDStr, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgInvalidUserID)
				return
			}

			tenantIDStr := r.Header.Get(headerTenantID)
			if tenantIDStr == "" {
				logger.Warn("Auth: missing %s for %s %s", headerTenantID, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingTenantID)
				return
			}

			tenantID, err := strconv.ParseInt(tenantIDStr, 10, 64)
			if err != nil || tenantID <= 0 {
				logger.Warn("Auth: invalid %s=%q for %s %s", headerTenantID, tenantIDStr, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgInvalidTenantID)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tenantIDKey, tenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetTenantID возвращает ID тенанта из контекста
func GetTenantID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(tenantIDKey).(int64)
	return id, ok
}
