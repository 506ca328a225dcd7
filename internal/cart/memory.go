package cart

import (
	"context"
	"sync"
)

// MemoryPersister 进程内快照存储
type MemoryPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryPersister 创建进程内存储
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.data[key] = stored
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
