package middleware

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/ratelimit"

	"go.uber.org/zap"
)

type Limiter interface {
	Limit(rule, key string) error
}

// RateLimit applies the named rule per client IP.
func RateLimit(limiter Limiter, rule string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)

			err := limiter.Limit(rule, ip)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var exceeded *ratelimit.ExceededError
			if !errors.As(err, &exceeded) {
				logger.Error("HTTP: Rate limiter failed", err, zap.String("rule", rule))
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(math.Ceil(exceeded.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Warn("HTTP: Rate limit exceeded",
				zap.String("rule", rule),
				zap.String("client_ip", ip),
				zap.Int("retry_after", retryAfter))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)

			json.NewEncoder(w).Encode(map[string]any{
				"error":   "RATE_LIMITED",
				"message": "Too many requests. Try again in " + strconv.Itoa(retryAfter) + " seconds",
				"details": map[string]any{
					"rule":        rule,
					"retry_after": retryAfter,
				},
				"request_id": GetRequestID(r.Context()),
			})
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
