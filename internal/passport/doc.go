// Package passport holds a user's identity key set.
//
// Every role owns an Ed25519 signing pair, an X25519 encryption pair and a
// validation signature from its signer. Keys are generated into a pending
// generation and promoted to confirmed once the network accepted them; only
// confirmed keys are serialised into the keyring.
package passport
