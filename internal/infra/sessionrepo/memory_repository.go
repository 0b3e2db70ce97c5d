package sessionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/sunday/internal/domain/session"
)

// MemoryRepository keeps finished sessions in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]session.Record
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string][]session.Record)}
}

// Save appends the record to the profile's history.
func (r *MemoryRepository) Save(_ context.Context, rec session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ProfileID] = append(r.records[rec.ProfileID], rec)
	return nil
}

// ListBetween returns sessions started within [from, to), oldest first.
func (r *MemoryRepository) ListBetween(_ context.Context, profileID string, from, to time.Time) ([]session.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []session.Record
	for _, rec := range r.records[profileID] {
		if !rec.StartedAt.Before(from) && rec.StartedAt.Before(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

var _ session.Repository = (*MemoryRepository)(nil)
