package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the validity window of issued tokens.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and unexpected algorithms.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned once the validity window has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Manager issues and verifies HS256 bearer tokens bound to a user id.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a Manager. A non-positive ttl falls back to DefaultTTL.
func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL reports the validity window applied to new tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token whose subject is userID.
func (m *Manager) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	// NumericDate keeps whole seconds; issuing on a second boundary keeps
	// exp exactly ttl after iat.
	now := m.now().Truncate(time.Second)
	claims := jwtlib.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates signature and expiry and returns the subject. A token is
// expired only once the clock is strictly past its exp claim.
func (m *Manager) Verify(token string) (string, error) {
	claims := &jwtlib.RegisteredClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", errors.Join(ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrTokenInvalid
	}
	if m.now().After(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	return claims.Subject, nil
}
