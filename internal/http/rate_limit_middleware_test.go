package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryRateLimiterFixedWindow(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	limiter := newMemoryRateLimiter(clock.Now)
	policy := config.RateLimit{Limit: 2, Window: time.Minute}

	first := limiter.Allow("write|user:a", policy)
	require.True(t, first.allowed)
	require.Equal(t, 1, first.count)
	require.Equal(t, clock.now.Add(time.Minute), first.windowEnd)

	require.True(t, limiter.Allow("write|user:a", policy).allowed)
	denied := limiter.Allow("write|user:a", policy)
	require.False(t, denied.allowed)
	require.Equal(t, 2, denied.count)

	require.True(t, limiter.Allow("write|user:b", policy).allowed)

	clock.Advance(time.Minute)
	again := limiter.Allow("write|user:a", policy)
	require.True(t, again.allowed)
	require.Equal(t, 1, again.count)
}

func TestMemoryRateLimiterSweepsExpiredWindows(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	limiter := newMemoryRateLimiter(clock.Now)
	policy := config.RateLimit{Limit: 5, Window: 10 * time.Second}

	for _, key := range []string{"login|ip:1", "login|ip:2", "login|ip:3"} {
		limiter.Allow(key, policy)
	}
	require.Equal(t, 3, limiter.size())

	clock.Advance(2 * rateSweepEvery)
	limiter.Allow("login|ip:4", policy)
	require.Equal(t, 1, limiter.size())
}

func TestMemoryRateLimiterIgnoresDisabledPolicy(t *testing.T) {
	limiter := newMemoryRateLimiter(time.Now)
	for i := 0; i < 10; i++ {
		require.True(t, limiter.Allow("k", config.RateLimit{}).allowed)
	}
	require.Zero(t, limiter.size())
}

func TestConfiguredWriteLimitIsPerUser(t *testing.T) {
	limits := config.RateLimits{
		Register: config.RateLimit{Limit: 10, Window: time.Minute},
		Write:    config.RateLimit{Limit: 1, Window: time.Minute},
	}
	router := setupRouterWithLimits(t, NewMemoryRateLimiter(), limits)
	alice := register(t, router, "alice@example.com", "Alice")
	bob := register(t, router, "bob@example.com", "Bob")

	rr := do(t, router, http.MethodPost, "/posts", alice.Token, map[string]string{"content": "Two-bed condo"})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = do(t, router, http.MethodPost, "/posts", alice.Token, map[string]string{"content": "Another one"})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "rate limit exceeded", decode[errorBody](t, rr).Message)

	rr = do(t, router, http.MethodPost, "/posts", bob.Token, map[string]string{"content": "Bob's listing"})
	require.Equal(t, http.StatusCreated, rr.Code)

	// Login is not configured, so it is not limited at all.
	rr = do(t, router, http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
