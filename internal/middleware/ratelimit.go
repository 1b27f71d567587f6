package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/pkg/response"
	"golang.org/x/time/rate"
)

// tokenClient tracks one remote address hitting token-addressed routes.
type tokenClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenRateLimiter throttles the public token-addressed routes (shared
// swap offers, calendar feeds) per client address. Share and calendar
// tokens are unguessable, so sustained traffic from a single address
// is enumeration, not legitimate use.
type TokenRateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*tokenClient
	rps        rate.Limit
	burst      int
	retryAfter string
}

// NewTokenRateLimiter builds a limiter allowing rps sustained requests
// per second with the given burst, per client address. Non-positive
// values fall back to a conservative default.
func NewTokenRateLimiter(rps float64, burst int) *TokenRateLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	rl := &TokenRateLimiter{
		clients:    make(map[string]*tokenClient),
		rps:        rate.Limit(rps),
		burst:      burst,
		retryAfter: strconv.Itoa(int(math.Ceil(1 / rps))),
	}
	go rl.evictIdle()
	return rl
}

func (rl *TokenRateLimiter) limiterFor(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[addr]
	if !ok {
		cl = &tokenClient{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[addr] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// evictIdle drops addresses quiet for ten minutes so a one-off scan
// does not pin memory for the life of the process.
func (rl *TokenRateLimiter) evictIdle() {
	for range time.Tick(5 * time.Minute) {
		rl.mu.Lock()
		for addr, cl := range rl.clients {
			if time.Since(cl.lastSeen) > 10*time.Minute {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware rejects over-limit requests with 429 through the standard
// error envelope and a Retry-After hint.
func (rl *TokenRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", rl.retryAfter)
			response.Error(c, response.NewRateLimited("too many requests, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}
