// Package derive maps the three secret factors (keyword, pin, password) to the
// network names and keys of the credential packet chain.
//
// Everything here is deterministic in its names and keys and never touches the
// network. Only the sealed outputs carry randomness (nonces).
//
//	MidName(k, p)         = Hash(k, p)
//	SmidName(k, p)        = Hash(k, p, smidSalt)
//	TmidName(k, p, pw, r) = Hash(k, p, pw, r)
//
// Session snapshots are sealed under a key hardened with Argon2id, so the KDF
// parameters live on a Deriver value.
package derive
