package projects

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is the in-memory project Store used without a database and in
// tests.
type Memory struct {
	mu       sync.Mutex
	projects map[string]Project
}

func NewMemory() *Memory {
	return &Memory{projects: make(map[string]Project)}
}

func (m *Memory) Create(_ context.Context, ownerID, name, description string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := NewPublicID("proj")
	if err != nil {
		return nil, err
	}
	p := Project{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	if description != "" {
		p.Description = &description
	}
	m.projects[id] = p
	out := p
	return &out, nil
}

func (m *Memory) ByID(_ context.Context, id string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Project, 0, 16)
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, id, ownerID string, name, description *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		if *description == "" {
			p.Description = nil
		} else {
			d := *description
			p.Description = &d
		}
	}
	m.projects[id] = p
	return true, nil
}

func (m *Memory) Delete(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	delete(m.projects, id)
	return true, nil
}
