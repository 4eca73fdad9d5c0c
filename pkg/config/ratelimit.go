package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimit allows Limit requests per Window. A zero Limit disables it.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Enabled reports whether the limit should be enforced.
func (r RateLimit) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

func (r RateLimit) String() string {
	if !r.Enabled() {
		return "off"
	}
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// RateLimits holds the policy of each route class.
type RateLimits struct {
	Register RateLimit // per client IP
	Login    RateLimit // per client IP
	Write    RateLimit // per user: posts, likes, comments, deletes, profile edits
	Realtime RateLimit // per client IP: timeline stream connects
}

// DefaultRateLimits returns the limits applied when nothing is configured.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Register: RateLimit{Limit: 5, Window: time.Minute},
		Login:    RateLimit{Limit: 12, Window: time.Minute},
		Write:    RateLimit{Limit: 60, Window: time.Minute},
		Realtime: RateLimit{Limit: 30, Window: 30 * time.Second},
	}
}

// ParseRateLimit reads "<count>/<window>", e.g. "5/1m" or "30/30s". A bare
// count uses a one minute window and "0" or "off" disables the limit.
func ParseRateLimit(value string) (RateLimit, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "off") {
		return RateLimit{}, nil
	}
	countPart, windowPart, hasWindow := strings.Cut(value, "/")
	count, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || count < 0 {
		return RateLimit{}, fmt.Errorf("rate limit %q: count must be a non-negative integer", value)
	}
	window := time.Minute
	if hasWindow {
		window, err = time.ParseDuration(strings.TrimSpace(windowPart))
		if err != nil || window <= 0 {
			return RateLimit{}, fmt.Errorf("rate limit %q: window must be a positive duration", value)
		}
	}
	if count == 0 {
		return RateLimit{}, nil
	}
	return RateLimit{Limit: count, Window: window}, nil
}

// GetRateLimit reads a rate limit variable or returns fallback when unset or
// malformed.
func GetRateLimit(key string, fallback RateLimit) RateLimit {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := ParseRateLimit(value)
	if err != nil {
		log.Printf("invalid value for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func loadRateLimits() RateLimits {
	def := DefaultRateLimits()
	return RateLimits{
		Register: GetRateLimit("RATE_LIMIT_REGISTER", def.Register),
		Login:    GetRateLimit("RATE_LIMIT_LOGIN", def.Login),
		Write:    GetRateLimit("RATE_LIMIT_WRITE", def.Write),
		Realtime: GetRateLimit("RATE_LIMIT_REALTIME", def.Realtime),
	}
}
