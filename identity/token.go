// Package identity handles the app token used against Microsoft Graph and
// the kiosk user carried by each request.
package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultAppScope = "https://graph.microsoft.com/.default"
	AdminRole       = "Totem.Admin"
)

// DefaultDelegatedScopes are handed to the front end for its own sign-in.
var DefaultDelegatedScopes = []string{"User.Read", "email", "openid", "profile", "Sites.ReadWrite.All"}

// AppConfig is the Entra ID app registration used for daemon access.
type AppConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// TokenURL overrides the tenant token endpoint.
	TokenURL string
}

// NewTokenSource returns a cached client-credentials token source.
func NewTokenSource(ctx context.Context, cfg AppConfig) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client ID o secret non configurati")
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		if cfg.TenantID == "" {
			return nil, errors.New("tenant ID non configurato")
		}
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultAppScope}
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx)), nil
}

// AccessToken returns a valid bearer token from ts.
func AccessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("acquisizione token: %w", err)
	}
	return tok.AccessToken, nil
}
