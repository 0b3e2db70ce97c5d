package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when an update targets a missing profile.
var ErrNotFound = errors.New("profile not found")

// Repository abstracts profile persistence.
type Repository interface {
	Create(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (Profile, bool, error)
	Update(ctx context.Context, p Profile) error
}
