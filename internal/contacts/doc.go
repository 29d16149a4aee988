// Package contacts implements the contact collection owned by a session:
// unique by public id, with lookups by status and presence, ordered views and
// fuzzy search.
package contacts
