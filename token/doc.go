// Package token signs and verifies the compact HS256 tokens used for access
// and refresh credentials.
//
// # Error policy
//
// Verify collapses every failure — bad signature, malformed structure,
// unexpected algorithm, expired — into the single [ErrInvalidToken]. Callers
// never learn which check failed, so a remote attacker cannot use the error
// channel as a verification oracle.
//
// # What this package must NOT do
//
//   - Persist anything. Refresh-token records and blacklists live in revoke.
//   - Accept a signing secret shorter than 32 bytes. That is a construction
//     error, never a per-request condition.
package token
