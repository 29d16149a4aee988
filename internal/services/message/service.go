package message

import (
	"context"
	"fmt"
	"time"

	"lifestuff/internal/domain"
)

// Service exchanges share messages over a messenger.
type Service struct {
	messenger domain.Messenger
}

// New returns a message service on m.
func New(m domain.Messenger) *Service { return &Service{messenger: m} }

// Send delivers a share message from one public id to another.
func (s *Service) Send(ctx context.Context, from, to domain.PublicID, m Share) error {
	msg := domain.Message{
		From:      from,
		To:        to,
		Fields:    m.Fields(),
		Timestamp: time.Now().UnixMicro(),
	}
	if err := s.messenger.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", m.Tag, to, err)
	}
	return nil
}

// Handler processes one received message.
type Handler func(ctx context.Context, from domain.PublicID, m Share) error

// Receive fetches up to limit messages for me and passes them to h in order.
// Malformed messages are dropped. Processing stops at the first handler
// error; only the messages before it are acknowledged.
func (s *Service) Receive(ctx context.Context, me domain.PublicID, limit int, h Handler) (int, error) {
	msgs, err := s.messenger.Fetch(ctx, me, limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	var herr error
	for _, msg := range msgs {
		m, err := ParseShare(msg.Fields)
		if err != nil {
			log.Warnf("dropping message from %s: %v", msg.From, err)
			processed++
			continue
		}
		if err := h(ctx, msg.From, m); err != nil {
			herr = fmt.Errorf("handle %s from %s: %w", m.Tag, msg.From, err)
			break
		}
		processed++
	}

	if processed > 0 {
		if err := s.messenger.Ack(ctx, me, processed); err != nil {
			return processed, fmt.Errorf("ack %d messages: %w", processed, err)
		}
	}
	return processed, herr
}
