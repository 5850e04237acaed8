package domain

import "time"

// Credentials stores the OAuth tokens for one connected account.
// Created by the external OAuth flow; refreshed in place by the credential
// refresher; flipped inactive when the provider permanently revokes the
// refresh token.
type Credentials struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// AccountEmail is the user's email from the provider's userinfo endpoint.
	AccountEmail string `json:"account_email,omitempty"`

	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`

	// Active is false once the refresh token has been permanently revoked.
	// Terminal until external re-authentication creates a new credential.
	Active bool `json:"active"`

	// CreatedAt is when the credentials were created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the credentials were last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the access token has expired.
func (c *Credentials) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credentials) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
