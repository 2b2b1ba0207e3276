package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of an issued bearer token.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned when a token's expiry is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed tokens or bad signatures.
	ErrTokenInvalid = errors.New("invalid token")
)

// Identity is the administrator a token was issued to.
type Identity struct {
	AdminID  string
	Username string
}

// Claims are the JWT claims carried by an administrator token.
type Claims struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens. The signing secret
// is fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock sets the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		s.ttl = ttl
	}
}

// NewTokenService constructs a TokenService signing with secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for the given administrator. JWT times have
// whole-second precision, so the expiry is rounded up to the next second and
// a token is never rejected before the full TTL has passed.
func (s *TokenService) Issue(adminID, username string) (string, error) {
	now := s.now()
	claims := Claims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now.Truncate(time.Second)),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(s.ttl))),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies tokenString and returns the identity it asserts.
// It fails with ErrTokenExpired once the clock is past the expiry; the
// expiry second itself is still valid. Anything else is ErrTokenInvalid.
func (s *TokenService) Validate(tokenString string) (Identity, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return Identity{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return Identity{}, ErrTokenInvalid
	}
	if s.now().After(claims.ExpiresAt.Time) {
		return Identity{}, ErrTokenExpired
	}
	if strings.TrimSpace(claims.AdminID) == "" || strings.TrimSpace(claims.Username) == "" {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{AdminID: claims.AdminID, Username: claims.Username}, nil
}

func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Before(t) {
		return truncated.Add(time.Second)
	}
	return truncated
}
