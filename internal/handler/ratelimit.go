package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	"github.com/maxviazov/movedex/pkg/response"
)

// RateLimit limits requests per client IP within a sliding window. The counter
// and X-RateLimit-* headers come from httprate; the 429 body uses the API
// error envelope. A non-positive limit disables the middleware.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := httprate.NewRateLimiter(limit, window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(response.ErrorPayload{
				Error:   "rate_limited",
				Message: "too many requests, retry later",
			})
		}),
	)
	return func(c *gin.Context) {
		if rl.RespondOnLimit(c.Writer, c.Request, c.ClientIP()) {
			c.Abort()
			return
		}
		c.Next()
	}
}
