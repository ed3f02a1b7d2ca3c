package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"talentflow-core/pkg/models"
)

// clientLimiter tracks one client's token bucket and its last use so idle
// entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit limits requests per client IP. requestsPerMinute <= 0 disables
// the middleware entirely.
func RateLimit(requestsPerMinute int) echo.MiddlewareFunc {
	if requestsPerMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	// Evict clients idle for more than 10 minutes.
	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for ip, cl := range clients {
				if cl.lastSeen.Before(cutoff) {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	burst := requestsPerMinute

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			mu.Lock()
			cl, ok := clients[ip]
			if !ok {
				cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
				clients[ip] = cl
			}
			cl.lastSeen = time.Now()
			mu.Unlock()

			if !cl.limiter.Allow() {
				requestID, _ := c.Get("request_id").(string)
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:     "rate_limited",
					Message:   "Too many requests, slow down",
					Retryable: true,
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			return next(c)
		}
	}
}
