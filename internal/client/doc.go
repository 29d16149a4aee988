// Package client sequences secret input, the credential chain, the vault
// backend and the drive into the operations a user sees: create an account,
// log in and out, mount the drive, change a credential, remove the account.
//
// Every public operation holds one mutex, so a Client and the Session it owns
// are safe to share between goroutines.
package client
