// Package vault holds the storage backends a logged-in client keeps its
// chunks in.
//
// A Backend is picked once, at construction: Network keeps every chunk as a
// packet owned by the user's Pmid key, Local keeps sealed chunk files on
// disk. Either must be bound to the Pmid with RegisterPmid before use.
package vault
