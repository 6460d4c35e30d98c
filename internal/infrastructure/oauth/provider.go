package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/oksasatya/local-business-directory/internal/application"
)

// Provider implements the authorization-code login against any OAuth2
// provider that exposes an OpenID Connect style userinfo endpoint.
type Provider struct {
	cfg         *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

func NewProvider(c Config) *Provider {
	return &Provider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
			RedirectURL:  c.RedirectURL,
			Scopes:       c.Scopes,
		},
		userInfoURL: c.UserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// userInfo is the subset of standard OIDC claims the directory stores.
type userInfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (p *Provider) Exchange(ctx context.Context, code string) (*application.Identity, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	// route token exchange through our client so it gets the same timeout
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("userinfo: status %d: %s", res.StatusCode, body)
	}

	var info userInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.New("userinfo has no sub claim")
	}
	return &application.Identity{
		Subject:   info.Sub,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Picture:   info.Picture,
	}, nil
}

var _ application.IdentityProvider = (*Provider)(nil)
