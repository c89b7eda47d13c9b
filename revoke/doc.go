// Package revoke tracks blacklisted token identifiers and live refresh-token
// records in a kv.Store, with entry TTLs mirroring token expiry.
//
// # Design
//
// Every entry self-expires exactly when the token it concerns would have
// expired anyway, so the store never needs manual pruning. Consequently,
// "present" is the only observable blacklist state: an entry that lapsed is
// indistinguishable from one that never existed, which is precisely the
// intended semantics.
//
// # Bulk revocation
//
// RevokeAllUserTokens lists the user's key prefix and issues independent
// concurrent deletes. There is no atomic delete-all: a failure partway
// through leaves some sessions valid. That partial-revocation mode is
// documented behavior — failures are logged and the call reports how many
// records it did remove.
package revoke
