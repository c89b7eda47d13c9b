package veil

import (
	"context"
	"time"
)

// NewTOTPEnrollment generates a fresh second-factor secret for account and
// the otpauth URI an authenticator app enrolls from. Persisting the secret
// against the user is the caller's concern — this core treats it as opaque.
func (e *Engine) NewTOTPEnrollment(ctx context.Context, account string) (*TOTPEnrollment, error) {
	if e == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	return &TOTPEnrollment{
		Secret:       secret,
		ProvisionURI: e.totp.ProvisionURI(secret, account),
	}, nil
}

// VerifyTOTP checks a one-time code against the user's secret at the current
// time, tolerating the configured window of clock skew. A mismatch is
// [ErrTOTPInvalid]; secret problems surface as their own errors.
func (e *Engine) VerifyTOTP(ctx context.Context, code, secret string) error {
	if e == nil || e.totp == nil {
		return ErrEngineNotReady
	}

	ok, err := e.totp.Verify(code, secret, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTOTPInvalid
	}
	return nil
}
