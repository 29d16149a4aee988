// Package fob publishes and withdraws the public halves of a passport.
//
// Each role's fob is a packet signed by the role's own key and stored at
// Hash(signing public key, encryption public key). It carries both public keys
// and the validation signature from the role's signer, so anyone holding a fob
// can check it chains back to the user's anonymous MAID.
package fob
