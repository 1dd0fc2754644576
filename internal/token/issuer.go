package token

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VanillaLatte1/project-ant/internal/user"
)

// Pair is one access/refresh issuance.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer turns a resolved identity into a signed access/refresh pair
// and persists the refresh side. Exactly one refresh token is valid
// per identity at a time: issuing overwrites the previous one.
type Issuer struct {
	codec      *Codec
	store      user.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(codec *Codec, store user.Store, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair signs a fresh pair for u and stores the refresh token with
// its absolute expiry. The access subject is the bare user key; the
// refresh subject carries a trailing random nonce so successive
// refresh tokens for one user are distinguishable as tokens.
func (i *Issuer) IssuePair(ctx context.Context, u *user.User) (Pair, error) {
	key := u.Key()

	access, err := i.codec.Issue(key, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := i.codec.Issue(key+":"+uuid.NewString(), i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	expiry := i.now().Add(i.refreshTTL)
	if err := i.store.StoreRefreshToken(ctx, u.ID, refresh, expiry); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshTTL exposes the configured refresh lifetime.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// StripNonce recovers the logical user key from a refresh-token
// subject of the form provider:providerId:nonce. ok is false when the
// subject has no nonce segment.
func StripNonce(subject string) (key string, ok bool) {
	idx := strings.LastIndex(subject, ":")
	if idx <= 0 {
		return "", false
	}
	key = subject[:idx]
	if !strings.Contains(key, ":") {
		return "", false
	}
	return key, true
}

// SplitUserKey splits an access-token subject provider:providerId on
// the first delimiter.
func SplitUserKey(key string) (provider, providerID string, ok bool) {
	provider, providerID, ok = strings.Cut(key, ":")
	if !ok || provider == "" || providerID == "" {
		return "", "", false
	}
	return provider, providerID, true
}
