package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory resolves identities without a database; one row id per
// external uid for the life of the process.
type Memory struct {
	mu  sync.Mutex
	ids map[string]string
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]string)}
}

func (m *Memory) EnsureUser(_ context.Context, u UpsertUser) (string, error) {
	if u.ExternalUID == "" {
		return "", fmt.Errorf("external uid required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.ids[u.ExternalUID]; ok {
		return id, nil
	}
	id := uuid.New().String()
	m.ids[u.ExternalUID] = id
	return id, nil
}
