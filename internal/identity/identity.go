// Package identity normalizes provider user-info payloads into a
// canonical external identity. Each supported provider ships its own
// attribute shape; the extractors here flatten them into four fields.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedProvider rejects provider codes outside the
	// registered set. Login cannot proceed.
	ErrUnsupportedProvider = errors.New("identity: unsupported provider")

	// ErrProviderIDMissing means the provider returned no usable
	// subject identifier. Login cannot proceed without it.
	ErrProviderIDMissing = errors.New("identity: provider id missing")
)

// Identity holds normalized identity facts from one provider login.
// Empty string means absent for every field except ProviderID, which
// is always present on a successfully normalized identity.
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	ImageURL   string
}

// Key returns the provider:providerId user key.
func (id Identity) Key() string {
	return id.Provider + ":" + id.ProviderID
}

// extractor reads the four identity fields out of one provider's raw
// attribute mapping. Implementations are pure.
type extractor interface {
	extract(attrs map[string]any) Identity
}

// Closed set of supported providers. Adding one means adding an
// extractor file and a row here.
var extractors = map[string]extractor{
	"google": googleExtractor{},
	"kakao":  kakaoExtractor{},
	"naver":  naverExtractor{},
}

// Supported reports whether provider is a known provider code.
func Supported(provider string) bool {
	_, ok := extractors[provider]
	return ok
}

// Normalize maps a provider name plus that provider's raw user-info
// attributes into a canonical Identity. Blank emails are normalized
// to absent so they never act as an identity key downstream.
func Normalize(provider string, attrs map[string]any) (Identity, error) {
	ex, ok := extractors[provider]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	id := ex.extract(attrs)
	id.Provider = provider

	if strings.TrimSpace(id.ProviderID) == "" {
		return Identity{}, fmt.Errorf("%w: provider %s", ErrProviderIDMissing, provider)
	}
	if strings.TrimSpace(id.Email) == "" {
		id.Email = ""
	}

	return id, nil
}
