// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with one
// bucket per reviewer (or client IP). Requests may cost more than one
// token, which lets upload routes charge by declared body size. Selection
// replays marked by IdempotencyValidator skip the limiter. The limiter is
// process-local.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// rateLimited counts rejected requests per limiter scope.
var rateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)

// KeyFunc maps a request to its bucket identity.
type KeyFunc func(*gin.Context) string

// CostFunc returns how many tokens a request consumes (>= 1).
type CostFunc func(*gin.Context) int

// KeyByUserOrIP keys buckets by the acting user (context "userID" or the
// X-User-ID header) and falls back to the client IP. Keys are prefixed
// ("user:abc123", "ip:203.0.113.7") so the namespaces never collide.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := actingUser(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// CostByContentLength charges one token plus one per started unit of
// declared body size. Bodies of unknown length cost one token.
func CostByContentLength(unit int64) CostFunc {
	if unit <= 0 {
		unit = 1 << 20
	}
	return func(c *gin.Context) int {
		n := c.Request.ContentLength
		if n <= 0 {
			return 1
		}
		return 1 + int((n+unit-1)/unit)
	}
}

// RateLimitOptions configures a RateLimiter.
type RateLimitOptions struct {
	// Scope labels rejections in metrics ("api", "upload").
	Scope string
	// RPS is the refill rate; 0 allows only the initial burst.
	RPS float64
	// Burst is the bucket size; values <= 0 become 1. Costs above Burst
	// are clamped to it.
	Burst int
	// Key defaults to KeyByUserOrIP.
	Key KeyFunc
	// Cost defaults to one token per request.
	Cost CostFunc
	// IdleTTL evicts buckets unused for this long; defaults to 10 minutes.
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Idle buckets are swept at
// most once per IdleTTL, during lookups. Safe for concurrent use.
type RateLimiter struct {
	scope string
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	cost  CostFunc
	ttl   time.Duration

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter builds a limiter from opts. Install it with Handler.
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	rl := &RateLimiter{
		scope:     opts.Scope,
		rps:       rate.Limit(opts.RPS),
		burst:     opts.Burst,
		keyFn:     opts.Key,
		cost:      opts.Cost,
		ttl:       opts.IdleTTL,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
	if rl.scope == "" {
		rl.scope = "api"
	}
	if rl.burst <= 0 {
		rl.burst = 1
	}
	if rl.keyFn == nil {
		rl.keyFn = KeyByUserOrIP()
	}
	if rl.ttl <= 0 {
		rl.ttl = defaultIdleTTL
	}
	return rl
}

// getVisitor returns the limiter for key, creating it if absent. The sweep
// runs before the lookup so an expired bucket is replaced, not refreshed.
func (rl *RateLimiter) getVisitor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.ttl {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

func (rl *RateLimiter) costOf(c *gin.Context) int {
	if rl.cost == nil {
		return 1
	}
	n := rl.cost(c)
	if n < 1 {
		return 1
	}
	if n > rl.burst {
		return rl.burst
	}
	return n
}

// IsRateBypass reports whether IdempotencyValidator marked this request as
// a replay of a completed selection.
func IsRateBypass(c *gin.Context) bool { return c.GetBool(ctxKeyRateBypass) }

// Handler enforces the limits. Rejections are 429 with the standard error
// envelope (code "too_many_requests") and a Retry-After in whole seconds
// derived from when the bucket would hold enough tokens.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := time.Now()
		n := rl.costOf(c)
		res := rl.getVisitor(rl.keyFn(c), now).ReserveN(now, n)
		if res.OK() {
			delay := res.DelayFrom(now)
			if delay == 0 {
				c.Next()
				return
			}
			res.CancelAt(now)
			rl.reject(c, delay)
			return
		}
		rl.reject(c, time.Second)
	}
}

func (rl *RateLimiter) reject(c *gin.Context, wait time.Duration) {
	rateLimited.WithLabelValues(rl.scope).Inc()
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "too_many_requests",
		"message":    "rate limit exceeded",
	})
}
