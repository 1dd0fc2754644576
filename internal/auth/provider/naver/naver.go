package naver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/VanillaLatte1/project-ant/internal/auth/provider"
)

const (
	providerName = "naver"

	authURL     = "https://nid.naver.com/oauth2.0/authorize"
	tokenURL    = "https://nid.naver.com/oauth2.0/token"
	userInfoURL = "https://openapi.naver.com/v1/nid/me"
)

// Provider implements OAuth authentication against Naver. Naver nests
// every identity attribute under a top-level "response" object and
// does not support PKCE; the challenge parameters are ignored server
// side but harmless to send.
type Provider struct {
	oauthConfig *oauth2.Config
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("naver oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
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
		return nil, fmt.Errorf("naver token exchange failed: %w", err)
	}

	return provider.FetchUserInfo(ctx, p.oauthConfig, token, userInfoURL)
}
