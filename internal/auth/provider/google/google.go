package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/VanillaLatte1/project-ant/internal/logger"
)

const providerName = "google"

// Provider implements OAuth + OIDC authentication against Google.
// The verified ID token is the attribute source; no separate
// userinfo round trip is needed.
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (map[string]any, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var attrs map[string]any
	if err := idToken.Claims(&attrs); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	logger.Info("google oidc verified", map[string]any{
		"issuer":      idToken.Issuer,
		"audience":    idToken.Audience,
		"expiry_unix": idToken.Expiry.Unix(),
	})

	return attrs, nil
}
