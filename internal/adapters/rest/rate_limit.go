package rest

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware ограничивает общий поток запросов token bucket-ом.
// rps <= 0 отключает ограничение.
func RateLimitMiddleware(rps float64, burst int) func(next http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				WriteJSONError(w, http.StatusTooManyRequests, "Troppe richieste, riprova tra poco")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
