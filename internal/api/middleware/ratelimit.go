package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bookline/booking-engine/internal/api/handlers"
)

const msgRateLimited = "слишком много запросов, повторите позже"

// RateLimiter ограничивает частоту запросов по вызывающему пользователю.
// На каждого пользователя заводится token bucket; записи не вычищаются —
// при ожидаемом числе активных пользователей память ограничена, а лимитер
// живет столько же, сколько процесс.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter

	limit rate.Limit
	burst int
	log   Logger
}

// NewRateLimiter создает лимитер с rps запросов в секунду и burst'ом
func NewRateLimiter(rps float64, burst int, log Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		log:      log,
	}
}

// Middleware возвращает HTTP middleware поверх лимитера.
// Должен стоять ПОСЛЕ Auth: ключ — user ID из контекста.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			// Auth обязан был отработать раньше; не лимитируем вслепую
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(userID) {
			rl.log.Warn("RateLimit: user=%d throttled on %s %s", userID, r.Method, r.URL.Path)
			handlers.RespondTooManyRequests(w, msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(userID int64) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[userID] = limiter
	}
	rl.mu.Unlock()

	return limiter.Allow()
}
