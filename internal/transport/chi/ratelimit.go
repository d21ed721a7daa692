package chi

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/openrailwaymap/railsearch/internal/domain"
	"github.com/openrailwaymap/railsearch/internal/metrics"
	gen "github.com/openrailwaymap/railsearch/internal/transport/generated"
)

// exemptPaths are routes that bypass rate limiting (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// RateLimitMiddleware returns a middleware sharing one token bucket across all clients.
// If rps is not positive, rate limiting is disabled (pass-through).
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = int(math.Ceil(rps))
		}
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		retryAfter := strconv.Itoa(int(math.Ceil(1 / rps)))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow() {
				metrics.RequestErrorsTotal.WithLabelValues(string(gen.ErrorResponseTypeRateLimited)).Inc()
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, gen.ErrorResponseTypeRateLimited,
					"Too many requests.", domain.ErrRateLimited.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
