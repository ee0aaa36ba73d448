package repository

import (
	"context"
	"strings"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

// Store is the persistence contract for endpoints and pages. Two
// implementations exist: Postgres (production) and Memory (development
// without a database, and tests). Path uniqueness is enforced by the
// store; violations surface as domain.ErrPathConflict.
type Store interface {
	CreateEndpoint(ctx context.Context, ep domain.Endpoint) (*domain.Endpoint, error)
	EndpointByID(ctx context.Context, id string) (*domain.Endpoint, error)
	EndpointByPath(ctx context.Context, path string) (*domain.Endpoint, error)
	ListEndpointsByOwner(ctx context.Context, ownerID string) ([]domain.Endpoint, error)
	ListEndpointsByProject(ctx context.Context, projectID string) ([]domain.Endpoint, error)
	ListAllEndpoints(ctx context.Context) ([]domain.Endpoint, error)
	UpdateEndpoint(ctx context.Context, id, ownerID string, u domain.EndpointUpdate) (bool, error)
	DeleteEndpoint(ctx context.Context, id, ownerID string) (bool, error)

	CreatePage(ctx context.Context, p domain.Page) (*domain.Page, error)
	PageByID(ctx context.Context, id string) (*domain.Page, error)
	PageByPath(ctx context.Context, path string) (*domain.Page, error)
	ListPagesByOwner(ctx context.Context, ownerID string) ([]domain.Page, error)
	ListPagesByProject(ctx context.Context, projectID string) ([]domain.Page, error)
	ListAllPages(ctx context.Context) ([]domain.Page, error)
	UpdatePage(ctx context.Context, id, ownerID string, u domain.PageUpdate) (bool, error)
	DeletePage(ctx context.Context, id, ownerID string) (bool, error)
}

// joinParameters flattens a parameter list to its stored comma-joined form.
func joinParameters(params []string) string {
	return strings.Join(params, ",")
}

// splitParameters parses the stored form back to a list. Empty segments
// are dropped so a stored "a,,b" decodes to ["a" "b"].
func splitParameters(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
