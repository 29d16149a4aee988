// Package session implements the in-memory aggregate of a logged-in user and
// its snapshot wire form.
//
// A Session owns the secret factors, the passport, the contact collection and
// the drive metadata. Serialise produces a self-contained JSON snapshot;
// Parse rebuilds a session from one and reports which required field was
// missing. Reset wipes everything and must run on logout and on failed login.
package session
