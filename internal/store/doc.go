// Package store persists packets, messages and vault chunks on local disk.
//
// Bolt keeps the relay's name to packet map and the per-recipient message
// queues in a single bolt database. It enforces the same write rules as any
// other domain.PacketStore, so a relay (or a client running without one)
// behaves exactly like the network.
//
// ChunkDir keeps sealed chunk files under a directory. Every file is written
// through a temp file and renamed into place.
package store
