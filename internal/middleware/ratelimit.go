package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/murmurapp/murmur/pkg/config"
)

// RateLimiter bounds request throughput per client: by viewer identity when
// authenticated, by client IP otherwise. Limiters are created lazily and
// evicted after an idle period so the map does not grow without bound.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	rps      rate.Limit
	burst    int
	lastSwep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	sweepInterval = 5 * time.Minute
	idleEviction  = 10 * time.Minute
)

// NewRateLimiter creates a rate limiter with the given steady rate and burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*client),
		rps:      rate.Limit(rps),
		burst:    burst,
		lastSwep: time.Now(),
	}
}

// ReadLimiter builds the limiter for read routes from config
func ReadLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(cfg.ReadRPS, cfg.ReadBurst)
}

// WriteLimiter builds the stricter limiter for mutating routes from config
func WriteLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(cfg.WriteRPS, cfg.WriteBurst)
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(clientKey(c)) {
			abort(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if viewer := ViewerFrom(c); viewer != nil {
		return "u:" + strconv.FormatInt(viewer.ID, 10)
	}
	return "ip:" + c.ClientIP()
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSwep) > sweepInterval {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > idleEviction {
				delete(rl.clients, k)
			}
		}
		rl.lastSwep = now
	}

	cl, ok := rl.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}
