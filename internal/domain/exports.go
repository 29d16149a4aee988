package domain

import (
	interfaces "lifestuff/internal/domain/interfaces"
	types "lifestuff/internal/domain/types"
)

// IdentifierSize is the length of a network name.
const IdentifierSize = types.IdentifierSize

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Identifier     = types.Identifier
	PublicID       = types.PublicID
	SignedData     = types.SignedData
	OwnershipProof = types.OwnershipProof
	Message        = types.Message
	X25519Public   = types.X25519Public
	X25519Private  = types.X25519Private
	Ed25519Public  = types.Ed25519Public
	Ed25519Private = types.Ed25519Private
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	PacketStore = interfaces.PacketStore
	Messenger   = interfaces.Messenger
	RelayClient = interfaces.RelayClient
)

// ParseIdentifier decodes a hex identifier.
func ParseIdentifier(s string) (Identifier, error) { return types.ParseIdentifier(s) }
