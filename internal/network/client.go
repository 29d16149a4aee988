package network

import (
	"context"
	"fmt"

	"lifestuff/internal/domain"
)

// DefaultReadRetries bounds retries of idempotent reads.
const DefaultReadRetries = 3

// Client is a blocking domain.PacketStore over a Dispatcher. Get and
// KeyUnique are retried on transport failures; writes never are.
type Client struct {
	d           *Dispatcher
	readRetries int
}

// NewClient returns a client that retries reads up to readRetries times.
func NewClient(d *Dispatcher, readRetries int) *Client {
	if readRetries < 0 {
		readRetries = 0
	}
	return &Client{d: d, readRetries: readRetries}
}

// Put stores p under name.
func (c *Client) Put(ctx context.Context, name domain.Identifier, p domain.SignedData) error {
	cell := NewCell()
	c.d.Put(ctx, name, p, cell.Signal)
	return c.outcome(ctx, "put", name, cell)
}

// Get fetches the packet under name.
func (c *Client) Get(ctx context.Context, name domain.Identifier) (domain.SignedData, error) {
	var p domain.SignedData
	err := c.retry(ctx, "get", name, func(cell *Cell) {
		c.d.Get(ctx, name, cell.Signal)
	}, func(r Result) { p = r.Packet })
	return p, err
}

// Delete removes the packet under name.
func (c *Client) Delete(ctx context.Context, name domain.Identifier, proof domain.OwnershipProof) error {
	cell := NewCell()
	c.d.Delete(ctx, name, proof, cell.Signal)
	return c.outcome(ctx, "delete", name, cell)
}

// KeyUnique reports whether name is free.
func (c *Client) KeyUnique(ctx context.Context, name domain.Identifier) (bool, error) {
	var unique bool
	err := c.retry(ctx, "key_unique", name, func(cell *Cell) {
		c.d.KeyUnique(ctx, name, cell.Signal)
	}, func(r Result) { unique = r.Unique })
	return unique, err
}

func (c *Client) retry(ctx context.Context, op string, name domain.Identifier, start func(*Cell), done func(Result)) error {
	var err error
	for attempt := 0; attempt <= c.readRetries; attempt++ {
		cell := NewCell()
		start(cell)
		r, werr := cell.WaitContext(ctx)
		if werr != nil {
			return werr
		}
		if r.Code == domain.CodeSuccess {
			done(r)
			return nil
		}
		err = toError(op, r)
		if r.Code != domain.CodeTransport {
			return err
		}
		log.Debugf("%s %s attempt %d failed: %v", op, name.Short(), attempt+1, r.Err)
	}
	return err
}

func (c *Client) outcome(ctx context.Context, op string, name domain.Identifier, cell *Cell) error {
	r, err := cell.WaitContext(ctx)
	if err != nil {
		return err
	}
	if r.Code != domain.CodeSuccess {
		log.Debugf("%s %s: code %d: %v", op, name.Short(), r.Code, r.Err)
	}
	return toError(op, r)
}

// toError maps a result to the error returned to callers: the sentinel for
// known store outcomes, otherwise a NetworkError with the code.
func toError(op string, r Result) error {
	err := domain.ErrorOf(op, r.Code)
	if ne, ok := err.(*domain.NetworkError); ok {
		ne.Err = r.Err
		return ne
	}
	if err != nil && r.Err != nil {
		return fmt.Errorf("%s: %w", op, r.Err)
	}
	return err
}

var _ domain.PacketStore = (*Client)(nil)
