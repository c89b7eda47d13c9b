// Package kv defines the key-value store contract the session-security core
// depends on, together with its Redis implementation.
//
// # Contract
//
// A Store is an async, crash-consistent-per-key abstraction: point Get, Set
// with optional TTL, Delete, prefix-scoped List, and an optimistic
// compare-and-set Update. The core never assumes atomic multi-key
// transactions; callers that need them must layer their own coordination.
//
// # Architecture boundaries
//
// Store handles are passed explicitly into every consumer's constructor.
// There is no package-level client, no lazy initialization, and no global
// state; tests get an isolated store per case (miniredis or a flushed DB).
//
// # What this package must NOT do
//
//   - Encode or interpret record payloads (those belong to the consumers).
//   - Import any other veil package.
//   - Enforce cancellation or timeouts beyond what the backend provides.
package kv
