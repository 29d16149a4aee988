package network

import (
	"context"
	"errors"
	"sync"

	"lifestuff/internal/domain"
)

// ErrStopped is returned for operations submitted after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Callback receives an operation's outcome on a worker goroutine.
type Callback func(Result)

type job struct {
	ctx context.Context
	run func(context.Context) Result
	cb  Callback
}

// Dispatcher runs operations against a blocking backend on a fixed pool of
// workers.
type Dispatcher struct {
	backend domain.PacketStore
	jobs    chan job

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher starts workers goroutines serving backend.
func NewDispatcher(backend domain.PacketStore, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		backend: backend,
		jobs:    make(chan job, workers*4),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		var r Result
		if err := j.ctx.Err(); err != nil {
			r = Result{Code: domain.CodeCancelled, Err: err}
		} else {
			r = j.run(j.ctx)
		}
		j.cb(r)
	}
}

func (d *Dispatcher) submit(ctx context.Context, run func(context.Context) Result, cb Callback) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		cb(Result{Code: domain.CodeTransport, Err: ErrStopped})
		return
	}
	select {
	case d.jobs <- job{ctx: ctx, run: run, cb: cb}:
	case <-ctx.Done():
		cb(Result{Code: domain.CodeCancelled, Err: ctx.Err()})
	}
}

// Put stores p under name.
func (d *Dispatcher) Put(ctx context.Context, name domain.Identifier, p domain.SignedData, cb Callback) {
	d.submit(ctx, func(ctx context.Context) Result {
		return result(d.backend.Put(ctx, name, p))
	}, cb)
}

// Get fetches the packet under name.
func (d *Dispatcher) Get(ctx context.Context, name domain.Identifier, cb Callback) {
	d.submit(ctx, func(ctx context.Context) Result {
		p, err := d.backend.Get(ctx, name)
		r := result(err)
		r.Packet = p
		return r
	}, cb)
}

// Delete removes the packet under name.
func (d *Dispatcher) Delete(ctx context.Context, name domain.Identifier, proof domain.OwnershipProof, cb Callback) {
	d.submit(ctx, func(ctx context.Context) Result {
		return result(d.backend.Delete(ctx, name, proof))
	}, cb)
}

// KeyUnique probes whether name is free.
func (d *Dispatcher) KeyUnique(ctx context.Context, name domain.Identifier, cb Callback) {
	d.submit(ctx, func(ctx context.Context) Result {
		unique, err := d.backend.KeyUnique(ctx, name)
		r := result(err)
		r.Unique = unique
		return r
	}, cb)
}

// Stop drains queued operations and waits for the workers to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func result(err error) Result {
	return Result{Code: domain.CodeOf(err), Err: err}
}
