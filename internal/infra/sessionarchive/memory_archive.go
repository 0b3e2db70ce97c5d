package sessionarchive

import (
	"context"
	"sync"

	"github.com/yanqian/sunday/internal/domain/session"
)

// MemoryArchive keeps archived sessions in memory. Useful for tests and local dev.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive constructs the archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// Put stores the encoded record.
func (a *MemoryArchive) Put(_ context.Context, rec session.Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[ObjectKey(rec)] = data
	return nil
}

// Object returns a stored payload by key.
func (a *MemoryArchive) Object(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[key]
	return data, ok
}

var _ session.Archive = (*MemoryArchive)(nil)
