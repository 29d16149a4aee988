// Package domain defines core data models, collaborator contracts and the error
// taxonomy shared across the client. It contains plain types (wire/state),
// interfaces and sentinel errors only.
package domain
