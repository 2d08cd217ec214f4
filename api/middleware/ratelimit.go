package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/use-agent/linkpreview/config"
	"github.com/use-agent/linkpreview/models"
	"golang.org/x/time/rate"
)

// idleTTL is how long an identity's bucket survives without traffic.
const idleTTL = time.Hour

// Cost reports how many tokens a request consumes.
type Cost func(c *gin.Context) int

// PerRequest charges one token per request.
func PerRequest(*gin.Context) int { return 1 }

// PerBatchURL charges one token per URL in a batch body, so a batch costs
// the same as previewing its URLs one by one. The body is cached on the
// context; handlers must bind it with ShouldBindBodyWith.
func PerBatchURL(c *gin.Context) int {
	var req models.BatchRequest
	// Validation errors are left for the handler to report; decoding has
	// already filled URLs by then.
	_ = c.ShouldBindBodyWith(&req, binding.JSON)
	return max(len(req.URLs), 1)
}

// RateLimiter holds one token bucket (golang.org/x/time/rate) per identity:
// the API key set by Auth, or the client IP for anonymous callers.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter and starts evicting idle buckets
// every 5 minutes.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	l := &RateLimiter{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   max(cfg.Burst, 1),
		buckets: make(map[string]*bucket),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			l.evictIdle(now.Add(-idleTTL))
		}
	}()

	return l
}

// Limit returns middleware charging cost(c) tokens per request. A cost
// above the burst is clamped to it so that the largest allowed batch can
// still pass on a full bucket.
func (l *RateLimiter) Limit(cost Cost) gin.HandlerFunc {
	if cost == nil {
		cost = PerRequest
	}
	return func(c *gin.Context) {
		n := min(cost(c), l.burst)

		now := time.Now()
		res := l.bucketFor(identity(c), now).ReserveN(now, n)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			abort(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"rate limit exceeded, please slow down")
			return
		}

		c.Next()
	}
}

func (l *RateLimiter) bucketFor(id string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[id]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[id] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *RateLimiter) evictIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// identity prefers the API key set by Auth and falls back to the client IP.
func identity(c *gin.Context) string {
	if key := c.GetString(apiKeyContextKey); key != "" {
		return "key:" + key
	}
	return "ip:" + c.ClientIP()
}
