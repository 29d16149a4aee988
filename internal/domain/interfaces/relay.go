package interfaces

import (
	"context"

	domaintypes "lifestuff/internal/domain/types"
)

// Messenger delivers operation-tagged messages between public ids.
//
// Fetch returns up to limit queued messages without removing them (limit <= 0
// means all); Ack drops the first count once they were handled.
type Messenger interface {
	Send(ctx context.Context, msg domaintypes.Message) error
	Fetch(ctx context.Context, me domaintypes.PublicID, limit int) ([]domaintypes.Message, error)
	Ack(ctx context.Context, me domaintypes.PublicID, count int) error
}

// RelayClient is how we talk to a relay serving both the store and messaging.
type RelayClient interface {
	PacketStore
	Messenger
}
