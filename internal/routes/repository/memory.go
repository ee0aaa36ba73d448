package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

// Memory is a mutex-guarded in-memory Store. It backs development runs
// without a database and the handler/registry tests.
type Memory struct {
	mu        sync.Mutex
	endpoints map[string]domain.Endpoint // by id
	pages     map[string]domain.Page     // by id
}

func NewMemory() *Memory {
	return &Memory{
		endpoints: make(map[string]domain.Endpoint),
		pages:     make(map[string]domain.Page),
	}
}

func (m *Memory) endpointPathTaken(path, excludeID string) bool {
	for id, e := range m.endpoints {
		if id != excludeID && e.Path == path {
			return true
		}
	}
	return false
}

func (m *Memory) pagePathTaken(path, excludeID string) bool {
	for id, p := range m.pages {
		if id != excludeID && p.Path == path {
			return true
		}
	}
	return false
}

func (m *Memory) CreateEndpoint(_ context.Context, ep domain.Endpoint) (*domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.endpointPathTaken(ep.Path, "") {
		return nil, domain.ErrPathConflict
	}
	if ep.ID == "" {
		ep.ID = uuid.New().String()
	}
	ep.CreatedAt = time.Now()
	m.endpoints[ep.ID] = ep
	out := ep
	return &out, nil
}

func (m *Memory) EndpointByID(_ context.Context, id string) (*domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.endpoints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *Memory) EndpointByPath(_ context.Context, path string) (*domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.endpoints {
		if e.Path == path {
			out := e
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) ListEndpointsByOwner(_ context.Context, ownerID string) ([]domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Endpoint, 0, 16)
	for _, e := range m.endpoints {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ListEndpointsByProject(_ context.Context, projectID string) ([]domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Endpoint, 0, 16)
	for _, e := range m.endpoints {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ListAllEndpoints(_ context.Context) ([]domain.Endpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Endpoint, 0, len(m.endpoints))
	for _, e := range m.endpoints {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) UpdateEndpoint(_ context.Context, id, ownerID string, u domain.EndpointUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.endpoints[id]
	if !ok || e.OwnerID != ownerID {
		return false, nil
	}
	if u.Path != nil {
		if m.endpointPathTaken(*u.Path, id) {
			return false, domain.ErrPathConflict
		}
		e.Path = *u.Path
	}
	if u.Parameters != nil {
		e.Parameters = append([]string(nil), (*u.Parameters)...)
	}
	if u.Code != nil {
		e.Code = *u.Code
	}
	if u.Language != nil {
		e.Language = *u.Language
	}
	if u.HTTPMethod != nil {
		e.HTTPMethod = *u.HTTPMethod
	}
	m.endpoints[id] = e
	return true, nil
}

func (m *Memory) DeleteEndpoint(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.endpoints[id]
	if !ok || e.OwnerID != ownerID {
		return false, nil
	}
	delete(m.endpoints, id)
	return true, nil
}

func (m *Memory) CreatePage(_ context.Context, pg domain.Page) (*domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pagePathTaken(pg.Path, "") {
		return nil, domain.ErrPathConflict
	}
	if pg.ID == "" {
		pg.ID = uuid.New().String()
	}
	pg.CreatedAt = time.Now()
	m.pages[pg.ID] = pg
	out := pg
	return &out, nil
}

func (m *Memory) PageByID(_ context.Context, id string) (*domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) PageByPath(_ context.Context, path string) (*domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pages {
		if p.Path == path {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) ListPagesByOwner(_ context.Context, ownerID string) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Page, 0, 16)
	for _, p := range m.pages {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListPagesByProject(_ context.Context, projectID string) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Page, 0, 16)
	for _, p := range m.pages {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListAllPages(_ context.Context) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Page, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) UpdatePage(_ context.Context, id, ownerID string, u domain.PageUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pages[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	if u.Path != nil {
		if m.pagePathTaken(*u.Path, id) {
			return false, domain.ErrPathConflict
		}
		p.Path = *u.Path
	}
	if u.HTMLContent != nil {
		p.HTMLContent = *u.HTMLContent
	}
	m.pages[id] = p
	return true, nil
}

func (m *Memory) DeletePage(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pages[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	delete(m.pages, id)
	return true, nil
}
