package cache

import (
	"context"
	"sync"
	"time"
)

// PayloadCache keeps raw provider responses so a rerun inside the TTL does not
// spend rate-limit budget on the same request.
type PayloadCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type payload struct {
	raw       []byte
	expiresAt time.Time // zero keeps the entry for the process lifetime
}

// MemoryPayloads is the in-process PayloadCache used when no redis is
// configured. Values are copied in and out.
type MemoryPayloads struct {
	mu      sync.Mutex
	entries map[string]payload
	now     func() time.Time
}

func NewMemoryPayloads() *MemoryPayloads {
	return &MemoryPayloads{entries: make(map[string]payload), now: time.Now}
}

func (m *MemoryPayloads) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !p.expiresAt.IsZero() && !m.now().Before(p.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), p.raw...), true, nil
}

func (m *MemoryPayloads) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	p := payload{raw: append([]byte(nil), value...)}
	if ttl > 0 {
		p.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = p
	m.mu.Unlock()
	return nil
}

// NopPayloads never stores anything.
type NopPayloads struct{}

func (NopPayloads) GetBytes(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopPayloads) SetBytes(context.Context, string, []byte, time.Duration) error { return nil }
