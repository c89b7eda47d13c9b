// Package veil is the session-security core of a web service: signed-token
// issuance and verification, refresh-token lifecycle and revocation, a
// time-based one-time-passcode second factor, CSRF double-submit defense,
// and per-client rate limiting.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// veil is the public surface. It exposes [Engine], [Builder], [Config], value
// types, and sentinel errors. The leaves live in subpackages — kv (store
// contract), token, revoke, totp, ratelimit, middleware — and never import
// each other except through the kv contract.
//
// # What this package must NOT do
//
//   - Implement the key-value storage engine. The store is an external
//     collaborator injected at Build time.
//   - Manage user profiles, roles, or outbound email. Token claims are the
//     only authorization surface this core carries.
//   - Explain verification failures. Invalid tokens collapse to one error.
package veil
