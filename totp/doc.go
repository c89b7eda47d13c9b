// Package totp implements RFC 6238 time-based one-time passcodes over the
// RFC 4226 HOTP construction (HMAC-SHA1, dynamic truncation).
//
// # Clock handling
//
// Code generation is a pure function of (secret, counter). Window checks pass
// explicit counters derived from a caller-supplied timestamp and loop over
// the skew offsets; nothing in this package reads or mutates a shared clock,
// so concurrent verifications cannot observe each other.
//
// # What this package must NOT do
//
//   - Persist secrets. Storage of enrollment state is the caller's concern.
//   - Compare codes with non-constant-time equality.
package totp
