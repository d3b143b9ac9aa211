package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig controls the hardening headers
type SecurityConfig struct {
	// HSTS is skipped in trusted environments served over plain HTTP
	HSTS bool
	// NoStorePrefixes are paths whose responses carry payment or payroll data
	NoStorePrefixes []string
	// ConnectSources are extra origins the front-desk app may reach
	ConnectSources []string
}

// SecurityHeadersWithConfig sets hardening headers on every response.
// The API only serves JSON, so the policy denies everything a browser could render.
func SecurityHeadersWithConfig(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			if config.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			path := c.Request().URL.Path
			for _, prefix := range config.NoStorePrefixes {
				if strings.HasPrefix(path, prefix) {
					h.Set("Cache-Control", "no-store")
					h.Set("Pragma", "no-cache")
					break
				}
			}

			h.Del("Server")
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}

func buildCSP(config SecurityConfig) string {
	csp := []string{
		"default-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'none'",
	}
	if len(config.ConnectSources) > 0 {
		csp = append(csp, "connect-src 'self' "+strings.Join(config.ConnectSources, " "))
	}
	return strings.Join(csp, "; ")
}
