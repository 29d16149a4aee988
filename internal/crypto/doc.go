// Package crypto exposes the primitives used by the lifestuff client.
//
// Contents
//
//   - Length-prefixed SHA-512 hashing into network identifiers (Hash)
//   - Argon2id key hardening and HKDF-SHA512 expansion (DeriveKEK, Expand)
//   - XChaCha20-Poly1305 sealing with a random nonce prefix (Seal, Open)
//   - NaCl secretbox and anonymous sealed boxes (SecretSeal, SealAnonymous)
//   - Ed25519 signing, X25519 key generation and packet signing / ownership
//     proofs understood by the network store (SignPacket, ProveOwnership)
//   - Grouped public-key fingerprints for display (Fingerprint)
//
// # Notes
//
// Open and SecretOpen report domain.ErrMalformedPacket for framing errors and
// domain.ErrAuthentication when the key does not open the ciphertext, so
// callers can tell a parse failure from a wrong secret.
package crypto
