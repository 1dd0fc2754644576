package kakao

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/VanillaLatte1/project-ant/internal/auth/provider"
)

const (
	providerName = "kakao"

	authURL     = "https://kauth.kakao.com/oauth/authorize"
	tokenURL    = "https://kauth.kakao.com/oauth/token"
	userInfoURL = "https://kapi.kakao.com/v2/user/me"
)

// Provider implements OAuth authentication against Kakao. Kakao is
// plain OAuth2: identity attributes come from the userinfo endpoint,
// with the numeric account id at the top level.
type Provider struct {
	oauthConfig *oauth2.Config
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || redirectURL == "" {
		return nil, errors.New("kakao oauth config missing required fields")
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
			Scopes: []string{
				"account_email",
				"profile_nickname",
				"profile_image",
			},
		},
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
		return nil, fmt.Errorf("kakao token exchange failed: %w", err)
	}

	return provider.FetchUserInfo(ctx, p.oauthConfig, token, userInfoURL)
}
