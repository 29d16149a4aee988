package network

import (
	"context"
	"sync"
	"time"

	"lifestuff/internal/domain"
)

// Fault decides whether an operation on name should fail.
type Fault func(name domain.Identifier) bool

// MemoryStore is an in-process domain.PacketStore.
type MemoryStore struct {
	mu          sync.Mutex
	packets     map[domain.Identifier]domain.SignedData
	failPuts    Fault
	failDeletes Fault
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{packets: make(map[domain.Identifier]domain.SignedData)}
}

// FailPuts makes matching puts fail with a transport error. nil clears it.
func (m *MemoryStore) FailPuts(f Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = f
}

// FailDeletes makes matching deletes fail with a transport error. nil clears it.
func (m *MemoryStore) FailDeletes(f Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDeletes = f
}

// Has reports whether a packet is stored under name.
func (m *MemoryStore) Has(name domain.Identifier) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.packets[name]
	return ok
}

// Len returns the number of stored packets.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.packets)
}

func (m *MemoryStore) Put(_ context.Context, name domain.Identifier, p domain.SignedData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts != nil && m.failPuts(name) {
		return &domain.NetworkError{Op: "put", Code: domain.CodeTransport}
	}
	var existing *domain.SignedData
	if cur, ok := m.packets[name]; ok {
		existing = &cur
	}
	if err := CheckPut(existing, p); err != nil {
		return err
	}
	m.packets[name] = p
	return nil
}

func (m *MemoryStore) Get(_ context.Context, name domain.Identifier) (domain.SignedData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packets[name]
	if !ok {
		return domain.SignedData{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) Delete(_ context.Context, name domain.Identifier, proof domain.OwnershipProof) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes != nil && m.failDeletes(name) {
		return &domain.NetworkError{Op: "delete", Code: domain.CodeTransport}
	}
	var existing *domain.SignedData
	if cur, ok := m.packets[name]; ok {
		existing = &cur
	}
	if err := CheckDelete(existing, name, proof); err != nil {
		return err
	}
	delete(m.packets, name)
	return nil
}

func (m *MemoryStore) KeyUnique(_ context.Context, name domain.Identifier) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.packets[name]
	return !ok, nil
}

// MemoryMessenger is an in-process domain.Messenger.
type MemoryMessenger struct {
	mu        sync.Mutex
	queues    map[domain.PublicID][]domain.Message
	sent      []domain.Message
	failSends func(to domain.PublicID) bool
}

// NewMemoryMessenger returns an empty messenger.
func NewMemoryMessenger() *MemoryMessenger {
	return &MemoryMessenger{queues: make(map[domain.PublicID][]domain.Message)}
}

// FailSends makes sends to matching recipients fail. nil clears it.
func (m *MemoryMessenger) FailSends(f func(to domain.PublicID) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSends = f
}

func (m *MemoryMessenger) Send(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSends != nil && m.failSends(msg.To) {
		return &domain.NetworkError{Op: "send", Code: domain.CodeTransport}
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMicro()
	}
	m.queues[msg.To] = append(m.queues[msg.To], msg)
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MemoryMessenger) Fetch(_ context.Context, me domain.PublicID, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queues[me]
	if limit > 0 && limit < len(q) {
		q = q[:limit]
	}
	return append([]domain.Message(nil), q...), nil
}

func (m *MemoryMessenger) Ack(_ context.Context, me domain.PublicID, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queues[me]
	if count > len(q) {
		count = len(q)
	}
	if count <= 0 {
		return nil
	}
	m.queues[me] = q[count:]
	if len(m.queues[me]) == 0 {
		delete(m.queues, me)
	}
	return nil
}

// Sent returns every message accepted so far, including acknowledged ones.
func (m *MemoryMessenger) Sent() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.sent...)
}

var (
	_ domain.PacketStore = (*MemoryStore)(nil)
	_ domain.Messenger   = (*MemoryMessenger)(nil)
)
