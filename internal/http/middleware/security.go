// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders for the JSON API. HSTS is opt-in and
// only sent on HTTPS requests. There is no CSP: nothing but Swagger serves
// HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests. Only
	// enable when traffic is HTTPS end to end.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days when <= 0.
	HSTSMaxAge time.Duration
	// NoStore marks responses uncacheable (Cache-Control, Pragma, Expires).
	NoStore bool
	// CacheablePaths are URL path prefixes exempt from NoStore, e.g. the
	// static Swagger UI assets.
	CacheablePaths []string
	// EnablePolicy sends Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
	// CrossOriginIsolation sends Cross-Origin-Opener-Policy and
	// Cross-Origin-Resource-Policy (same-site).
	CrossOriginIsolation bool
}

type headerKV struct{ k, v string }

// SecurityHeaders sets the configured headers before the handler runs.
// nosniff, X-Frame-Options: DENY and Referrer-Policy: no-referrer are
// always sent. When the response carries X-Request-ID it is added to
// Access-Control-Expose-Headers so browser clients can read it.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	base := []headerKV{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.EnablePolicy {
		base = append(base,
			headerKV{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			headerKV{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if opt.CrossOriginIsolation {
		base = append(base,
			headerKV{"Cross-Origin-Opener-Policy", "same-origin"},
			headerKV{"Cross-Origin-Resource-Policy", "same-site"},
		)
	}
	noStore := []headerKV{
		{"Cache-Control", "no-store"},
		{"Pragma", "no-cache"},
		{"Expires", "0"},
	}

	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range base {
			h.Set(kv.k, kv.v)
		}
		if opt.NoStore && !hasAnyPrefix(c.Request.URL.Path, opt.CacheablePaths) {
			for _, kv := range noStore {
				h.Set(kv.k, kv.v)
			}
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}
		c.Next()
	}
}

// exposeHeader adds name to Access-Control-Expose-Headers unless present.
func exposeHeader(h http.Header, name string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	if cur == "" {
		h.Set(hdr, name)
		return
	}
	for _, p := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return
		}
	}
	h.Set(hdr, cur+", "+name)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// isHTTPS reports whether the request arrived over TLS, directly or via a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
