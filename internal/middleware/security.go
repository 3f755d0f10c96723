// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders returns middleware that adds security headers to every
// response. extraImgSrc lists origins images may load from besides the
// site itself, such as an S3 public URL. hsts enables
// Strict-Transport-Security and must only be set behind TLS.
func SecureHeaders(hsts bool, extraImgSrc ...string) func(http.Handler) http.Handler {
	imgSrc := strings.TrimSpace("'self' data: " + strings.Join(extraImgSrc, " "))
	csp := strings.Join([]string{
		"default-src 'self'",
		"img-src " + imgSrc,
		"style-src 'self'",
		"script-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'self'",
		"base-uri 'self'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
