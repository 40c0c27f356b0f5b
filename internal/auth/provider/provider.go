package provider

import (
	"context"

	"hatake-api/internal/auth"
)

// OAuthProvider is one external sign-in source. Implementations report
// identity facts only; linking and sessions belong to the caller.
type OAuthProvider interface {
	// Name is the path segment used in /oauth/login/:provider.
	Name() string

	// AuthCodeURL returns the authorization redirect for state and an S256
	// PKCE challenge.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode redeems code with the matching PKCE verifier.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.Identity, error)
}
