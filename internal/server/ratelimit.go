package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP. Buckets idle for
// longer than the TTL are swept lazily, at most once per TTL.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	clients   map[string]*clientEntry
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		ttl:       limiterIdleTTL,
		clients:   make(map[string]*clientEntry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	e, ok := l.clients[client]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops idle clients. Callers hold mu.
func (l *clientLimiter) sweep(now time.Time) {
	for client, e := range l.clients {
		if now.Sub(e.lastSeen) >= l.ttl {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

// Allow reports whether client may issue a request now.
func (l *clientLimiter) Allow(client string) bool {
	return l.get(client).Allow()
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			s.logger.Warn().Str("client", c.ClientIP()).Str("path", c.FullPath()).Msg("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
