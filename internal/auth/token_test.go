package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func TestTokenIssueAndValidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a1b2", "admin")
	require.NoError(t, err)

	clock.now = clock.now.Add(23*time.Hour + 59*time.Minute)
	identity, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{AdminID: "a1b2", Username: "admin"}, identity)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a1b2", "admin")
	require.NoError(t, err)

	clock.now = clock.now.Add(24*time.Hour + time.Second)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenValidUntilFullTTLWithSubSecondIssue(t *testing.T) {
	issued := time.Date(2024, time.June, 15, 10, 0, 0, 900_000_000, time.UTC)
	clock := &fakeClock{now: issued}
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a1b2", "admin")
	require.NoError(t, err)

	for _, offset := range []time.Duration{24*time.Hour - 500*time.Millisecond, 24 * time.Hour} {
		clock.now = issued.Add(offset)
		_, err = svc.Validate(token)
		require.NoError(t, err, "offset %s", offset)
	}

	clock.now = issued.Add(24*time.Hour + time.Second)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenValidAtExactExpirySecond(t *testing.T) {
	issued := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issued}
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a1b2", "admin")
	require.NoError(t, err)

	clock.now = issued.Add(24 * time.Hour)
	_, err = svc.Validate(token)
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Nanosecond)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestTokenService(t, clock)
	other, err := NewTokenService("other-secret", WithClock(clock.Now))
	require.NoError(t, err)

	token, err := other.Issue("a1b2", "admin")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRejectsMalformed(t *testing.T) {
	svc := newTestTokenService(t, &fakeClock{now: time.Now()})

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(token)
		require.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestTokenRejectsTamperedPayload(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a1b2", "admin")
	require.NoError(t, err)
	forged, err := svc.Issue("ffff", "root")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = svc.Validate(tampered)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("   ")
	require.Error(t, err)
}
