package shortener

import (
	"fmt"
	"net/url"
)

// URLPolicy decides whether a submitted URL may be shortened.
type URLPolicy func(rawURL string) error

// AllowAny accepts every submission as-is, the empty string included.
func AllowAny(string) error {
	return nil
}

// RequireHTTP accepts only absolute http and https URLs with a host.
func RequireHTTP(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidURL, rawURL)
	}

	return nil
}
