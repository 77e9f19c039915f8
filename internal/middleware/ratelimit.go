package middleware

import (
	"net/http"
	"strconv"

	"github.com/SanketN15/url-shortner/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RateLimit rejects requests once the client, identified by IP and User-Agent,
// exceeds any of the limiter's windows.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), clientKey(r.Header.Get, r.RemoteAddr))
			if err != nil {
				logger.Error("rate limit check failed", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)

				return
			}

			if !decision.Allowed {
				logExceeded(logger, r.Method, r.URL.Path, clientIP(r.Header.Get, r.RemoteAddr), decision)

				w.Header().Set("Retry-After", retryAfter(decision))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HumaRateLimit returns a Huma middleware applying limiter to an operation.
func HumaRateLimit(
	api huma.API,
	limiter ratelimit.Limiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		decision, err := limiter.Allow(ctx.Context(), clientKey(ctx.Header, ctx.RemoteAddr()))
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", ctx.URL().Path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !decision.Allowed {
			logExceeded(logger, ctx.Method(), ctx.URL().Path, clientIP(ctx.Header, ctx.RemoteAddr()), decision)

			ctx.SetHeader("Retry-After", retryAfter(decision))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func logExceeded(logger *zap.Logger, method, path, ip string, decision ratelimit.Decision) {
	logger.Warn("rate limit exceeded",
		zap.String("path", path),
		zap.String("method", method),
		zap.Int64("count", decision.Count),
		zap.Int64("max", decision.Limit.Max),
		zap.Duration("window", decision.Limit.Window),
		zap.String("client_ip", ip),
	)
}

func retryAfter(decision ratelimit.Decision) string {
	return strconv.Itoa(max(1, int(decision.Limit.Window.Seconds())))
}
