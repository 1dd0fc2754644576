package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// OAuthProvider defines the contract every external identity provider
// must implement. Implementations return the provider's raw user-info
// attributes only; normalization and user decisions happen elsewhere.
type OAuthProvider interface {
	// Name returns the provider code (e.g. "google", "kakao").
	Name() string

	// AuthCodeURL returns the provider authorization URL. State and
	// PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns the raw user-info attribute mapping.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (map[string]any, error)
}

// FetchUserInfo performs an authenticated GET against a provider
// user-info endpoint and decodes the JSON body. Numbers are kept as
// json.Number so provider-scoped numeric ids survive stringification.
func FetchUserInfo(
	ctx context.Context,
	cfg *oauth2.Config,
	tok *oauth2.Token,
	url string,
) (map[string]any, error) {

	resp, err := cfg.Client(ctx, tok).Get(url)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("userinfo decode failed: %w", err)
	}

	return attrs, nil
}
