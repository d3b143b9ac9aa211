package security

import (
	"net/http"
)

// SanitizeHeaders returns a copy of headers with secrets removed, safe to log
func SanitizeHeaders(headers http.Header) http.Header {
	sensitiveHeaders := []string{
		"Authorization",
		"Cookie",
		"Set-Cookie",
		"X-CSRF-Token",
		"Api-Token",
		"Webhook-Signature",
	}

	clean := headers.Clone()
	for _, header := range sensitiveHeaders {
		if clean.Get(header) != "" {
			clean.Set(header, "[HIDDEN]")
		}
	}
	return clean
}
