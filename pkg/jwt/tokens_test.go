package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager("super-secret", 0)
	token, err := m.Issue("user-123")
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
	require.Equal(t, DefaultTTL, m.TTL())
}

func TestVerifyAfterWindowIsExpired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt)))
	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	justBefore := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt.Add(DefaultTTL-time.Minute))))
	_, err = justBefore.Verify(token)
	require.NoError(t, err)

	later := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt.Add(8*24*time.Hour))))
	_, err = later.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyExpiresStrictlyAfterWindow(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	token, err := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt))).Issue("u1")
	require.NoError(t, err)

	atExpiry := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt.Add(DefaultTTL))))
	userID, err := atExpiry.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)

	pastExpiry := NewManager("secret", DefaultTTL, WithClock(fixedClock(issuedAt.Add(DefaultTTL+time.Nanosecond))))
	_, err = pastExpiry.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssueOnFractionalSecondKeepsFullWindow(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, time.March, 1, 12, 0, 0, 900_000_000, time.UTC)
	token, err := NewManager("secret", time.Hour, WithClock(fixedClock(issuedAt))).Issue("u1")
	require.NoError(t, err)

	claims := &jwtlib.RegisteredClaims{}
	_, _, err = jwtlib.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	require.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewManager("right-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewManager("wrong-secret", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewManager("k", time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	t.Parallel()

	claims := jwtlib.RegisteredClaims{
		Subject:   "u3",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresSubject(t *testing.T) {
	t.Parallel()

	claims := jwtlib.RegisteredClaims{ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	t.Parallel()

	if _, err := NewManager("k", time.Hour).Issue(" "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
