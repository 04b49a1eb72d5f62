package app

import (
	"net/url"
	"strings"

	"github.com/worksite/core/internal/config"
)

// originAllowFunc returns the CORS origin predicate. In development, or
// when no origins are configured, every origin is admitted; in production
// the configured patterns are matched against the origin host.
func originAllowFunc(cfg *config.AppConfig) func(string) bool {
	if cfg.IsDev() || len(cfg.AllowedOrigins) == 0 {
		return func(string) bool { return true }
	}
	patterns := cfg.AllowedOrigins
	return func(origin string) bool {
		host := originHost(origin)
		for _, pattern := range patterns {
			if matchOriginPattern(pattern, host) {
				return true
			}
		}
		return false
	}
}

// originHost returns the "host[:port]" portion of an origin URL.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern reports whether host matches the given pattern.
// "*.example.com" matches any subdomain; "localhost:*" matches any port.
func matchOriginPattern(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	if strings.HasSuffix(pattern, ":*") {
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
