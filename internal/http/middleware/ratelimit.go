package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// idleBucketTTL is how long an unused bucket is kept before it is swept.
const idleBucketTTL = 10 * time.Minute

var rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: metricsNamespace,
	Subsystem: metricsSubsystem,
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the rate limiter, by caller kind.",
}, []string{"caller"})

func init() {
	prometheus.MustRegister(rateLimited)
}

// RateKeyFunc maps a request to the bucket it draws tokens from. Keys are
// "<kind>:<id>"; the kind is used as a metric label.
type RateKeyFunc func(*gin.Context) string

// KeyByUserOrIP buckets identified callers by user id and anonymous ones by
// client IP, so one noisy adopter cannot starve others behind the same NAT.
func KeyByUserOrIP() RateKeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != 0 {
			return "user:" + strconv.FormatUint(uint64(uid), 10)
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per
// key. It is safe for concurrent use. Horizontally scaled deployments get
// per-replica limits.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	key    RateKeyFunc
	exempt map[string]struct{}
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter refills rps tokens per second into buckets of size burst
// (at least 1). Requests to an exempt path, such as health probes, are never
// limited.
func NewRateLimiter(rps float64, burst int, key RateKeyFunc, exempt ...string) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	ex := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		ex[p] = struct{}{}
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		key:     key,
		exempt:  ex,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// limiterFor returns the bucket for key, creating it on first use. Idle
// buckets are swept at most once per idleBucketTTL, before the lookup.
func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= idleBucketTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= idleBucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// IsRateBypass reports whether IdempotencyValidator marked the request as a
// replay, which is served without spending a token.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyRateBypass)
	bypass, _ := b.(bool)
	return bypass
}

// Handler rejects requests over the caller's budget with 429 and a
// Retry-After telling the client when the next token is due.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.Request.URL.Path]; ok || IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		key := rl.key(c)
		res := rl.limiterFor(key, now).ReserveN(now, 1)
		delay := res.DelayFrom(now)
		if res.OK() && delay == 0 {
			c.Next()
			return
		}
		res.CancelAt(now)

		kind, _, _ := strings.Cut(key, ":")
		rateLimited.WithLabelValues(kind).Inc()
		c.Header("Retry-After", retryAfter(res.OK(), delay))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfter renders delay as whole seconds, rounded up and at least 1.
// A reservation that can never succeed (zero rate) advertises a minute.
func retryAfter(ok bool, delay time.Duration) string {
	if !ok || delay == rate.InfDuration {
		return "60"
	}
	secs := int64(math.Ceil(delay.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
