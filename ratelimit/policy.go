package ratelimit

import "time"

// Policy names a scope and its fixed-window budget.
type Policy struct {
	Scope       string
	MaxRequests int
	Window      time.Duration
}

// Preset policies for the core authentication routes.
var (
	LoginPolicy             = Policy{Scope: "auth-login", MaxRequests: 5, Window: 15 * time.Minute}
	SignupPolicy            = Policy{Scope: "signup", MaxRequests: 3, Window: time.Hour}
	APIPolicy               = Policy{Scope: "api", MaxRequests: 100, Window: 15 * time.Minute}
	EmailVerificationPolicy = Policy{Scope: "email-verification", MaxRequests: 3, Window: time.Hour}
	PasswordResetPolicy     = Policy{Scope: "password-reset", MaxRequests: 3, Window: time.Hour}
)
