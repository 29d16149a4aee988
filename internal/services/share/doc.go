// Package share implements shared-directory key management.
//
// Every membership or rights change that could revoke access rotates the
// share forward: a new share id and key pair are generated, the new public
// key packet is published, the directory's record is swapped in one step,
// remaining members are told the new keys (admins receive the signing
// private key as well), and finally the old key packet is deleted on a best
// effort basis. Key material is never edited in place.
//
// Rotations of one directory are serialised; different directories rotate
// concurrently. Members apply received keys with HandleMessage.
package share
