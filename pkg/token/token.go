package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a token issued without an explicit ttl.
const DefaultTTL = 600 * time.Second

// MinKeyLength is the shortest signing key accepted for HS256.
const MinKeyLength = 32

// ErrMalformed indicates the credential is not a token this service issued.
var ErrMalformed = errors.New("malformed token")

// ErrSignatureInvalid indicates the token signature does not match.
var ErrSignatureInvalid = errors.New("invalid token signature")

// ErrExpired indicates a correctly signed token past its expiry.
var ErrExpired = errors.New("token expired")

// ErrKeyTooShort is returned by NewSigner for weak signing keys.
var ErrKeyTooShort = fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)

// Claims are the claims carried by a token.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Config configures a Signer.
type Config struct {
	// Key is the process-wide HMAC secret
	Key []byte
	// DefaultTTL applies when Issue is called with ttl <= 0
	DefaultTTL time.Duration
	// Issuer is written to and required in the iss claim
	Issuer string
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	ID        string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	TTL       time.Duration
}

// Option customizes a Signer.
type Option func(*Signer)

// WithClock replaces the signer's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// Signer issues and validates HS256 tokens bound to a user id.
type Signer struct {
	key        []byte
	defaultTTL time.Duration
	issuer     string
	now        func() time.Time
}

// NewSigner creates a Signer. The key is copied and never changes afterwards.
func NewSigner(cfg Config, opts ...Option) (*Signer, error) {
	if len(cfg.Key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}

	s := &Signer{
		key:        append([]byte(nil), cfg.Key...),
		defaultTTL: cfg.DefaultTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
	if s.defaultTTL <= 0 {
		s.defaultTTL = DefaultTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL returns the ttl used when Issue is given none.
func (s *Signer) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a token for userID that expires ttl from now.
func (s *Signer) Issue(userID int64, ttl time.Duration) (*Issued, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	ttl = ttl.Truncate(time.Second)
	if ttl <= 0 {
		ttl = time.Second
	}

	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	id := uuid.NewString()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        id,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Issued{
		Token:     signed,
		ID:        id,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		TTL:       ttl,
	}, nil
}

// Validate checks the signature and expiry of raw and returns its claims.
// The error is always one of ErrMalformed, ErrSignatureInvalid or ErrExpired.
func (s *Signer) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}

	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, fmt.Errorf("%w: subject does not match user id", ErrMalformed)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// Expiry returns the expiry time of the claims.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
