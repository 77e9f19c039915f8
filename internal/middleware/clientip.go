package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// clientIP extracts the client IP from request headers and the peer address,
// considering proxies.
func clientIP(header func(string) string, remoteAddr string) string {
	// X-Forwarded-For may carry a chain; the first entry is the original client.
	if xff := header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return ip
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(header func(string) string, remoteAddr string) string {
	hash := sha256.Sum256([]byte(clientIP(header, remoteAddr) + "|" + header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
