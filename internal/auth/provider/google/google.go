package google

import (
	"context"

	"hatake-api/internal/auth/provider/oidcprovider"
)

const (
	providerName = "google"
	issuer       = "https://accounts.google.com"
)

// New returns the Google sign-in provider.
func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*oidcprovider.Provider, error) {
	return oidcprovider.New(ctx, oidcprovider.Config{
		Name:         providerName,
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
	})
}
