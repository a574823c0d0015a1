package model

import "time"

// TokenPair is returned by every login-like operation.
type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token"`
}

// AuthResponse is the body of signup, login and Google sign-in responses.
type AuthResponse struct {
	User User `json:"user"`
	TokenPair
}

// GoogleUserInfo is the subset of the Google userinfo payload the sign-in flow reads.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}
