package middleware

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/pkg/appenv"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterEntry holds a rate limiter and the last time it was seen.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiterStore is a threadsafe store mapping keys (user or IP) to limiter entries.
// A background janitor removes stale entries to avoid unbounded memory growth.
type ipLimiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	staleAfter time.Duration
}

func newIPLimiterStore(staleAfter time.Duration) *ipLimiterStore {
	store := &ipLimiterStore{
		entries:    make(map[string]*limiterEntry),
		staleAfter: staleAfter,
	}
	// Start cleanup goroutine
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.cleanup()
		}
	}()
	return store
}

func (s *ipLimiterStore) getOrCreate(key string, r rate.Limit, burst int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(r, burst)
	s.entries[key] = &limiterEntry{limiter: lim, lastSeen: time.Now()}
	return lim
}

func (s *ipLimiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.staleAfter)
	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// parseEnvRate reads RATE_LIMIT_RPS and RATE_LIMIT_BURST from environment or returns defaults.
func parseEnvRate() (rate.Limit, int) {
	rps := 5.0
	burst := 20
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			burst = i
		}
	}
	return rate.Limit(rps), burst
}

// buildWhitelist returns IP/CIDR whitelist from RATE_LIMIT_WHITELIST, comma separated.
func buildWhitelist() ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_WHITELIST"))
	if raw == "" {
		return ips, nets
	}
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if ip := net.ParseIP(p); ip != nil {
			ips = append(ips, ip)
			continue
		}
		if _, n, err := net.ParseCIDR(p); err == nil {
			nets = append(nets, n)
		}
	}
	return ips, nets
}

func isWhitelisted(clientIP string, ips []net.IP, nets []*net.IPNet) bool {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}
	for _, w := range ips {
		if w.Equal(ip) {
			return true
		}
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// isDisabled returns true when rate limiting should be disabled, e.g. for tests.
func isDisabled() bool {
	// Disable if RATE_LIMIT_ENABLED is explicitly set to false/0/no
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED"))); v == "0" || v == "false" || v == "no" {
		return true
	}
	return appenv.IsTest()
}

// RateLimitMiddleware performs per-IP token bucket limiting on public traffic.
// It skips preflight (OPTIONS), /health, the chat socket and the authenticated
// /admin routes, which AdminRateLimitMiddleware limits per admin. Configure via env:
// - RATE_LIMIT_ENABLED (bool, default true)
// - RATE_LIMIT_RPS (float, default 5)
// - RATE_LIMIT_BURST (int, default 20)
// - RATE_LIMIT_WHITELIST (comma-separated IPs or CIDRs)
func RateLimitMiddleware() gin.HandlerFunc {
	return keyedRateLimit(func(c *gin.Context) (string, bool) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/chat/ws" || isAdminPath(path) {
			return "", false
		}
		return "ip:" + c.ClientIP(), true
	})
}

// AdminRateLimitMiddleware must run after AuthMiddleware: it keys the bucket on
// the "adminUser" it sets, falling back to the IP.
func AdminRateLimitMiddleware() gin.HandlerFunc {
	return keyedRateLimit(func(c *gin.Context) (string, bool) {
		if admin := c.GetString("adminUser"); admin != "" {
			return "admin:" + admin, true
		}
		return "ip:" + c.ClientIP(), true
	})
}

// isAdminPath reports the routes behind the admin token. Login is anonymous.
func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/admin/") && path != "/admin/login"
}

// keyedRateLimit applies the env-configured bucket to the key chosen by keyOf.
// Requests for which keyOf returns false pass through.
func keyedRateLimit(keyOf func(c *gin.Context) (string, bool)) gin.HandlerFunc {
	if isDisabled() {
		// No-op middleware
		return func(c *gin.Context) { c.Next() }
	}

	r, burst := parseEnvRate()
	whitelistIPs, whitelistNets := buildWhitelist()
	store := newIPLimiterStore(10 * time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		key, limited := keyOf(c)
		if !limited || isWhitelisted(c.ClientIP(), whitelistIPs, whitelistNets) {
			c.Next()
			return
		}
		if !store.getOrCreate(key, r, burst).Allow() {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

// StrictRateLimitMiddleware guards the anonymous write endpoints (login, listing
// submissions, chat sockets) with a per-IP limiter separate from the global one.
// name keeps the buckets of different route groups apart.
func StrictRateLimitMiddleware(name string, rps float64, burst int) gin.HandlerFunc {
	if isDisabled() {
		return func(c *gin.Context) { c.Next() }
	}
	store := newIPLimiterStore(10 * time.Minute)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		lim := store.getOrCreate(name+":"+c.ClientIP(), rate.Limit(rps), burst)
		if !lim.Allow() {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, types.NewErrorResponse(types.ErrorCodeRateLimited, "Too many requests"))
}
