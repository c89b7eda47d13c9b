// Package ratelimit provides fixed-window request counters keyed by
// (scope, client) in a kv.Store.
//
// # Window semantics
//
// The first request in a window writes {count=1, windowResetAt=now+window}
// with TTL equal to the window, so idle counters evaporate on their own. A
// request after windowResetAt starts a fresh window; a request over budget is
// rejected with the remaining wait. Counters are updated through the store's
// optimistic compare-and-set, so concurrent increments across instances
// sharing one store are not lost.
//
// # What this package must NOT do
//
//   - Inspect HTTP requests. Client identity resolution and response headers
//     belong to the middleware package.
//   - Validate the authenticity of client identifiers. Deployments behind an
//     untrusted edge must strip or override forwarding headers themselves.
package ratelimit
