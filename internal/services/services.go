// package services defines clients for the HTTP APIs of music streaming providers
//
// Spotify is the only provider.
package services

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/oauth2"
)

// OAuthService is a provider that authorizes through the OAuth2 authorization code flow.
type OAuthService interface {
	// Name returns the name of the service (e.g., "Spotify")
	Name() string

	// GetAuthURL returns the URL the user visits to grant access. state is echoed back on the callback.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration so a callback handler can exchange codes.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a token (typically loaded from a cache) and refreshes it as needed.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

var errMissingItems = errors.New("page has no items field")

// Page is one page of a Spotify paging object.
//
// Decoding fails when the "items" field is absent so that callers can report a shape error
// instead of treating a malformed response as an empty page.
type Page[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items    *[]T    `json:"items"`
		Total    int     `json:"total"`
		Limit    int     `json:"limit"`
		Offset   int     `json:"offset"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Items == nil {
		return errMissingItems
	}

	*p = Page[T]{
		Items:    *raw.Items,
		Total:    raw.Total,
		Limit:    raw.Limit,
		Offset:   raw.Offset,
		Next:     raw.Next,
		Previous: raw.Previous,
	}
	return nil
}
