package profilerepo

import (
	"context"
	"errors"
	"sync"

	"github.com/yanqian/sunday/internal/domain/profile"
)

// MemoryRepository provides an in-memory profile store for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]profile.Profile)}
}

// Create stores the profile record.
func (r *MemoryRepository) Create(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return errors.New("profile already exists")
	}
	r.profiles[p.ID] = clone(p)
	return nil
}

// Get fetches by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return clone(p), ok, nil
}

// Update replaces the stored preferences.
func (r *MemoryRepository) Update(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; !exists {
		return profile.ErrNotFound
	}
	r.profiles[p.ID] = clone(p)
	return nil
}

func clone(p profile.Profile) profile.Profile {
	if p.AgeYears != nil {
		age := *p.AgeYears
		p.AgeYears = &age
	}
	return p
}

var _ profile.Repository = (*MemoryRepository)(nil)
