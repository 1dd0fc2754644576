package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired means the token was well-formed and correctly signed
	// but its expiry has passed. Callers deny either way; the split
	// exists so logs can tell expiry apart from tampering.
	ErrExpired = errors.New("token: expired")

	// ErrInvalid covers malformed tokens and bad signatures.
	ErrInvalid = errors.New("token: invalid")
)

const minSecretLen = 32 // 256 bits for HS256

// Codec issues and verifies compact HS256-signed bearer tokens
// carrying a subject and an absolute expiry. It is pure computation;
// nothing is persisted here.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token: signing key must be at least %d bytes, got %d", minSecretLen, len(secret))
	}
	return &Codec{secret: secret, now: time.Now}, nil
}

// Issue signs a token for subject expiring ttl from now.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := c.now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded subject.
// Zero leeway: a token presented at its exact expiry instant is expired.
func (c *Codec) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return claims.Subject, nil
}
