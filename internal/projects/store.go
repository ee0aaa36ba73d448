package projects

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("project not found")

// Store is the persistence contract for projects; Repo (Postgres) and
// Memory implement it.
type Store interface {
	Create(ctx context.Context, ownerID, name, description string) (*Project, error)
	ByID(ctx context.Context, id string) (*Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Project, error)
	Update(ctx context.Context, id, ownerID string, name, description *string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
