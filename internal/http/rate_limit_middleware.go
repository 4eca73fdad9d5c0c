package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

// rateClass groups routes that share one limit policy and one counter space.
type rateClass string

const (
	classRegister rateClass = "register"
	classLogin    rateClass = "login"
	classWrite    rateClass = "write"
	classRealtime rateClass = "realtime"
)

func (c rateClass) policy(limits config.RateLimits) config.RateLimit {
	switch c {
	case classRegister:
		return limits.Register
	case classLogin:
		return limits.Login
	case classWrite:
		return limits.Write
	case classRealtime:
		return limits.Realtime
	}
	return config.RateLimit{}
}

// RateLimiter counts hits per key against a policy.
type RateLimiter interface {
	Allow(key string, policy config.RateLimit) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

// memoryRateLimiter keeps fixed windows in process. Expired windows are swept
// from inside Allow, at most once per rateSweepEvery.
type memoryRateLimiter struct {
	mu        sync.Mutex
	windows   map[string]rateWindow
	nextSweep time.Time
	now       func() time.Time
}

type rateWindow struct {
	hits    int
	resetAt time.Time
}

const rateSweepEvery = time.Minute

// NewMemoryRateLimiter returns a limiter local to this process.
func NewMemoryRateLimiter() RateLimiter {
	return newMemoryRateLimiter(time.Now)
}

func newMemoryRateLimiter(now func() time.Time) *memoryRateLimiter {
	return &memoryRateLimiter{windows: make(map[string]rateWindow), now: now}
}

func (m *memoryRateLimiter) Allow(key string, policy config.RateLimit) rateDecision {
	if !policy.Enabled() {
		return rateDecision{allowed: true}
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
	}

	win, ok := m.windows[key]
	if !ok || !now.Before(win.resetAt) {
		win = rateWindow{resetAt: now.Add(policy.Window)}
	}
	if win.hits >= policy.Limit {
		return rateDecision{count: win.hits, windowEnd: win.resetAt}
	}
	win.hits++
	m.windows[key] = win
	return rateDecision{allowed: true, count: win.hits, windowEnd: win.resetAt}
}

func (m *memoryRateLimiter) sweep(now time.Time) {
	for key, win := range m.windows {
		if !now.Before(win.resetAt) {
			delete(m.windows, key)
		}
	}
	m.nextSweep = now.Add(rateSweepEvery)
}

func (m *memoryRateLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Close is a no-op; the memory limiter owns no background work.
func (m *memoryRateLimiter) Close() {}

// limit enforces the policy of class on next, counting hits per subject.
func (r *Router) limit(class rateClass, subject func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	policy := class.policy(r.rateLimits)
	if !policy.Enabled() || r.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, req *http.Request) {
		who := subject(req)
		decision := r.limiter.Allow(string(class)+"|"+who, policy)
		writeRateHeaders(w, policy.Limit, decision)
		if !decision.allowed {
			kind, _, _ := strings.Cut(who, ":")
			r.recordRateLimitHit(string(class), kind)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, req)
	}
}

// protected runs next behind the Auth Gate and the per-user write limit.
func (r *Router) protected(next http.HandlerFunc) http.HandlerFunc {
	return r.requireAuth(r.limit(classWrite, userSubject, next))
}

func userSubject(req *http.Request) string {
	if info, ok := authInfoFromContext(req.Context()); ok && info.UserID != "" {
		return "user:" + info.UserID
	}
	return ipSubject(req)
}

// ipSubject keys on the socket peer address.
func ipSubject(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

func writeRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(limit-decision.count, 0)))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
	if !decision.allowed && !decision.windowEnd.IsZero() {
		wait := time.Until(decision.windowEnd).Seconds()
		headers.Set("Retry-After", strconv.Itoa(max(int(wait+0.999), 1)))
	}
}
