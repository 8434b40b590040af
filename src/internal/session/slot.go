package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Read when nothing is stored.
var ErrSlotEmpty = errors.New("session slot is empty")

// Slot is a single named value in storage owned by the device.
// Reads and writes are each atomic; no multi-step transaction spans them.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, value []byte) error
	Clear(ctx context.Context) error
}

// MemorySlot keeps the value in process memory.
type MemorySlot struct {
	mu    sync.RWMutex
	value []byte
	set   bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Read(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.set {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), m.value...), nil
}

func (m *MemorySlot) Write(_ context.Context, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = append([]byte(nil), value...)
	m.set = true
	return nil
}

func (m *MemorySlot) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = nil
	m.set = false
	return nil
}

// memoryRegistry holds one MemorySlot per device id.
type memoryRegistry struct {
	mu    sync.Mutex
	slots map[string]*MemorySlot
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{slots: make(map[string]*MemorySlot)}
}

func (r *memoryRegistry) slot(deviceID string) *MemorySlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[deviceID]
	if !ok {
		s = NewMemorySlot()
		r.slots[deviceID] = s
	}
	return s
}

func (r *memoryRegistry) lookup(deviceID string) (*MemorySlot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[deviceID]
	return s, ok
}

func (r *memoryRegistry) drop(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, deviceID)
}

// deviceMemorySlot resolves the device from the request before touching the registry.
type deviceMemorySlot struct {
	registry *memoryRegistry
	device   *device
}

func (s *deviceMemorySlot) Read(ctx context.Context) ([]byte, error) {
	id, ok := s.device.id(false)
	if !ok {
		return nil, ErrSlotEmpty
	}
	slot, ok := s.registry.lookup(id)
	if !ok {
		return nil, ErrSlotEmpty
	}
	return slot.Read(ctx)
}

func (s *deviceMemorySlot) Write(ctx context.Context, value []byte) error {
	id, _ := s.device.id(true)
	return s.registry.slot(id).Write(ctx, value)
}

func (s *deviceMemorySlot) Clear(_ context.Context) error {
	if id, ok := s.device.id(false); ok {
		s.registry.drop(id)
	}
	return nil
}
