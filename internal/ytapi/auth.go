package ytapi

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ScopeYouTube grants full manage access to the channel, which broadcast
// creation, thumbnail upload and stream binding all require.
const ScopeYouTube = "https://www.googleapis.com/auth/youtube"

// NewTokenSource builds a self-refreshing credential from a long-lived refresh
// token, as minted by the tokengen tool. Nothing interactive happens here: if
// the refresh token has been revoked, API calls fail until the operator mints
// a new one.
func NewTokenSource(ctx context.Context, clientId, clientSecret, refreshToken string) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{ScopeYouTube},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
