// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Idempotency: unsafe requests may carry an Idempotency-Key. The validator
// checks its shape, stashes it for handlers (GetIdempotencyKey) and, when a
// stored selection already exists for (user, queue ":id", key), marks the
// request as a replay (IsReplay) so the rate limiter lets it through.
// Storage is the caller's concern, reached through IdempotencyLookup.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdemKeyMaxLen = 200
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

func (o IdempotencyOptions) accepts(key string) bool {
	maxLen := o.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemKeyMaxLen
	}
	pat := o.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	return len(key) <= maxLen && pat.MatchString(key)
}

// IdempotencyLookup reports whether a still-valid result exists for
// (userID, queueID, key) at now. Expiry is the implementation's job.
type IdempotencyLookup func(ctx context.Context, userID, queueID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator rejects malformed keys with 400 bad_idempotency_key.
// Only POSTs with a known user and queue are looked up; a lookup error
// counts as a miss so the handler decides.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if !opts.accepts(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil && c.Request.Method == http.MethodPost && storedResultExists(c, lookup, key) {
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

func storedResultExists(c *gin.Context, lookup IdempotencyLookup, key string) bool {
	uid, queueID := actingUser(c), c.Param("id")
	if uid == "" || queueID == "" {
		return false
	}
	exists, err := lookup(c.Request.Context(), uid, queueID, key, time.Now().UTC())
	return err == nil && exists
}

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a stored result exists for this request's key.
func IsReplay(c *gin.Context) bool { return c.GetBool(ctxKeyIdemReplay) }
