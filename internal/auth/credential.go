// Package auth manages the credential and session lifecycle for YouTube Music.
//
// A credential is either a server-issued OAuth token (device-code flow) or a
// set of captured browser headers. Exactly one variant is persisted at a time;
// the [Manager] turns whichever is present into the outbound header set sent
// on API requests.
package auth

import (
	"fmt"
	"time"

	"ytmb/internal/shared"
)

// Kind discriminates the persisted credential variant.
type Kind string

const (
	KindToken   Kind = "token"
	KindHeaders Kind = "headers"
)

// Credential is the persisted secret material enabling authenticated calls.
//
// Token fields are populated for KindToken, Headers for KindHeaders.
type Credential struct {
	Kind Kind `json:"kind"`

	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // unix seconds
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`

	Headers map[string]string `json:"headers,omitempty"`
}

// Validate checks the variant invariants: a token credential needs an access
// token, a header credential needs a session-identifying value.
func (c *Credential) Validate() error {
	switch c.Kind {
	case KindToken:
		if c.AccessToken == "" {
			return fmt.Errorf("%w: token credential missing access token", shared.ErrInvalidArgument)
		}
		return nil
	case KindHeaders:
		if len(c.Headers) == 0 {
			return fmt.Errorf("%w: header credential has no headers", shared.ErrInvalidArgument)
		}
		if c.Headers["Cookie"] == "" && c.Headers["Authorization"] == "" {
			return fmt.Errorf("%w", shared.ErrInvalidCredentialInput)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown credential kind %q", shared.ErrInvalidArgument, c.Kind)
	}
}

// Expired reports whether a token credential is past its expiry.
// Header credentials never expire from the manager's point of view.
func (c *Credential) Expired(now time.Time) bool {
	if c.Kind != KindToken || c.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= c.ExpiresAt
}
