// Package state tracks in-flight OAuth login attempts. Each attempt
// is keyed by its state parameter and holds the PKCE verifier; entries
// are one-time use and expire on their own.
package state

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// TTL bounds how long a login attempt may sit between the redirect to
// the provider and the callback.
const TTL = 5 * time.Minute

// ErrNotFound means the state was never issued, already consumed, or
// expired. The callback must treat it as an invalid login attempt.
var ErrNotFound = errors.New("state: not found")

// Store persists one login attempt per state value.
type Store interface {
	// Save records an attempt. The entry expires after TTL.
	Save(ctx context.Context, state, codeVerifier string) error

	// Consume returns the PKCE verifier for state and deletes the
	// entry, so a state value can authorize at most one callback.
	Consume(ctx context.Context, state string) (codeVerifier string, err error)
}

// NewAttempt generates a fresh state value and PKCE verifier/challenge
// triple for one login redirect.
func NewAttempt() (state, codeVerifier, codeChallenge string, err error) {
	state, err = randomToken()
	if err != nil {
		return "", "", "", err
	}
	codeVerifier, err = randomToken()
	if err != nil {
		return "", "", "", err
	}

	sum := sha256.Sum256([]byte(codeVerifier))
	codeChallenge = base64.RawURLEncoding.EncodeToString(sum[:])

	return state, codeVerifier, codeChallenge, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("state: random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
