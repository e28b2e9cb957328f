package projects

import (
	"context"
	"sort"
	"sync"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// MemoryRepository is an in-process project data source.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]Project
}

// NewMemoryRepository seeds a repository with the given projects.
func NewMemoryRepository(seed ...Project) *MemoryRepository {
	m := &MemoryRepository{projects: make(map[string]Project, len(seed))}
	for _, p := range seed {
		m.projects[p.ID] = p.Clone()
	}
	return m
}

// ListProjects returns every project, newest first.
func (m *MemoryRepository) ListProjects(context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]Project, 0, len(m.projects))
	for _, p := range m.projects {
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// GetProject fetches one project.
func (m *MemoryRepository) GetProject(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

var _ Repository = (*MemoryRepository)(nil)
