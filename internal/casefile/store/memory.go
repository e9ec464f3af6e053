package store

import (
	"context"
	"sync"

	"sahaya/internal/casefile/models"
	"sahaya/pkg/domain"
	"sahaya/pkg/platform/sentinel"
)

// InMemory keeps case aggregates in a map. Aggregates are deep-copied on the
// way in and out so callers never share slices with the store.
type InMemory struct {
	mu    sync.RWMutex
	cases map[domain.CaseID]*models.Case
}

func NewInMemory() *InMemory {
	return &InMemory{cases: make(map[domain.CaseID]*models.Case)}
}

func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.ID]; exists {
		return sentinel.ErrAlreadyExists
	}
	s.cases[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) List(_ context.Context, filter Filter) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if !filter.Assignee.IsZero() && c.AssignedTo != filter.Assignee {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

// Update commits a caller-held copy with optimistic concurrency: the write
// succeeds only when the stored version still matches the copy's origin.
func (s *InMemory) Update(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.cases[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != c.Version {
		return sentinel.ErrConflict
	}
	clone := c.Clone()
	clone.Version++
	s.cases[c.ID] = clone
	return nil
}

// Execute runs validate then mutate while holding the store lock, so the
// precondition check and the state write are one atomic unit. The mutated
// aggregate is committed with a bumped version and returned.
func (s *InMemory) Execute(_ context.Context, id domain.CaseID, validate func(c *models.Case) error, mutate func(c *models.Case)) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)
	working.Version++
	s.cases[id] = working
	return working.Clone(), nil
}
