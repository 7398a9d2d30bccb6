package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogger struct{}

func (fakeLogger) Info(format string, v ...interface{})  {}
func (fakeLogger) Warn(format string, v ...interface{})  {}
func (fakeLogger) Error(format string, v ...interface{}) {}

func requestWithUser(t *testing.T, userID int64) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	ctx := context.WithValue(req.Context(), userIDKey, userID)
	return req.WithContext(ctx)
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3, fakeLogger{})

	var served int
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithUser(t, 42))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 3, served)
}

func TestRateLimiter_ThrottlesBeyondBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, fakeLogger{})

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithUser(t, 42))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, 42))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestRateLimiter_IsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(1, 1, fakeLogger{})

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Первый пользователь исчерпывает свой burst
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, 1))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Второй пользователь не задет лимитом первого
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, 2))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_PassesThroughWithoutUser(t *testing.T) {
	rl := NewRateLimiter(1, 1, fakeLogger{})

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
