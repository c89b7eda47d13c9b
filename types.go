package veil

import "time"

// TokenPair is the result of issuance or rotation: a short-lived access
// token, a long-lived refresh token, and the identifier correlating the
// refresh token with its server-side record.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenID          string
	RefreshExpiresAt time.Time
}

// TOTPEnrollment carries everything a client needs to register the second
// factor: the base32 secret for manual entry and the otpauth URI for
// QR-code rendering (the rendering itself is the caller's concern).
type TOTPEnrollment struct {
	Secret       string
	ProvisionURI string
}
