package middleware

import (
	"net/http"

	"github.com/SanketN15/url-shortner/internal/analytics"
)

// RequestMeta adds client IP, user-agent, and referrer to the request context.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := analytics.RequestMeta{
			ClientIP:  clientIP(r.Header.Get, r.RemoteAddr),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		}

		next.ServeHTTP(w, r.WithContext(analytics.ContextWithRequestMeta(r.Context(), meta)))
	})
}
