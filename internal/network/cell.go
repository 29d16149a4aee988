package network

import (
	"context"
	"sync"

	"lifestuff/internal/domain"
)

// State of a Cell.
type State int

const (
	Pending State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "pending"
	}
}

// Result is what a completion callback receives.
type Result struct {
	Code   int
	Packet domain.SignedData
	Unique bool
	// Err is the backend's error for the code, kept for logging.
	Err error
}

// Cell is a tri-state result slot signalled once.
type Cell struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	state  State
	result Result
}

// NewCell returns a pending cell.
func NewCell() *Cell { return &Cell{done: make(chan struct{})} }

// Signal records r and wakes every waiter. Later calls are ignored.
func (c *Cell) Signal(r Result) {
	c.once.Do(func() {
		c.mu.Lock()
		c.result = r
		if r.Code == domain.CodeSuccess {
			c.state = Succeeded
		} else {
			c.state = Failed
		}
		c.mu.Unlock()
		close(c.done)
	})
}

// State returns the cell's current state without blocking.
func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the cell is signalled.
func (c *Cell) Wait() Result {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// WaitContext is Wait bounded by ctx. A cancelled wait leaves the cell
// pending.
func (c *Cell) WaitContext(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.Wait(), nil
	case <-ctx.Done():
		return Result{Code: domain.CodeCancelled, Err: ctx.Err()}, ctx.Err()
	}
}
