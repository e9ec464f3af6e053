package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/pkg/domain"
	"sahaya/pkg/platform/sentinel"
)

type CaseStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CaseStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCaseStoreSuite(t *testing.T) {
	suite.Run(t, new(CaseStoreSuite))
}

func (s *CaseStoreSuite) newCase(category domain.Category) *models.Case {
	initial, err := registry.InitialStatus(category)
	s.Require().NoError(err)
	return models.NewCase(
		domain.NewCaseID(category), category, initial,
		"Street light outage", "K. Lakshmi", "", domain.PriorityP2,
		domain.Actor{ID: "officer-1", Role: domain.RoleOfficer}, time.Now(),
	)
}

func (s *CaseStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds a case by id", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Title, found.Title)
		s.Equal(registry.StatusNew, found.Status)
	})

	s.Run("rejects duplicate ids", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))
		s.ErrorIs(s.store.Create(s.ctx, c), sentinel.ErrAlreadyExists)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewCaseID(domain.CategoryDispute))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("hands out copies, not shared state", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))

		first, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		first.Timeline = append(first.Timeline, models.TimelineEvent{Action: "tampered"})

		second, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Len(second.Timeline, 1)
	})
}

func (s *CaseStoreSuite) TestList() {
	grievance := s.newCase(domain.CategoryGrievance)
	dispute := s.newCase(domain.CategoryDispute)
	s.Require().NoError(s.store.Create(s.ctx, grievance))
	s.Require().NoError(s.store.Create(s.ctx, dispute))

	s.Run("lists everything without a filter", func() {
		all, err := s.store.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Len(all, 2)
	})

	s.Run("filters by category", func() {
		got, err := s.store.List(s.ctx, Filter{Category: domain.CategoryDispute})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(dispute.ID, got[0].ID)
	})

	s.Run("filters by assignee", func() {
		_, err := s.store.Execute(s.ctx, grievance.ID, nil, func(c *models.Case) {
			c.ApplyAssignment("officer-7", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, time.Now())
		})
		s.Require().NoError(err)

		got, err := s.store.List(s.ctx, Filter{Assignee: "officer-7"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(grievance.ID, got[0].ID)
	})
}

func (s *CaseStoreSuite) TestUpdateOptimisticConcurrency() {
	c := s.newCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Run("stale version loses", func() {
		copy1, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		copy2, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)

		copy1.Title = "first writer"
		s.Require().NoError(s.store.Update(s.ctx, copy1))

		copy2.Title = "second writer"
		s.ErrorIs(s.store.Update(s.ctx, copy2), sentinel.ErrConflict)
	})

	s.Run("unknown case cannot be updated", func() {
		ghost := s.newCase(domain.CategoryGrievance)
		s.ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})
}

func (s *CaseStoreSuite) TestExecute() {
	s.Run("validate failure leaves the case untouched", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))

		_, err := s.store.Execute(s.ctx, c.ID,
			func(*models.Case) error { return sentinel.ErrInvalidState },
			func(mc *models.Case) { mc.Title = "must not happen" },
		)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Title, found.Title)
		s.Equal(c.Version, found.Version)
	})

	s.Run("mutation commits with a bumped version", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))

		updated, err := s.store.Execute(s.ctx, c.ID, nil, func(mc *models.Case) {
			mc.ApplyTransition(registry.StatusTriaged, false, domain.Actor{ID: "officer-1", Role: domain.RoleOfficer}, time.Now())
		})
		s.Require().NoError(err)
		s.Equal(registry.StatusTriaged, updated.Status)
		s.Equal(c.Version+1, updated.Version)
	})

	s.Run("concurrent executes serialize per case", func() {
		c := s.newCase(domain.CategoryGrievance)
		s.Require().NoError(s.store.Create(s.ctx, c))

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.store.Execute(s.ctx, c.ID, nil, func(mc *models.Case) {
					mc.AppendEvent(models.TimelineEvent{Kind: models.EventKindUser, Action: "note"})
				})
			}()
		}
		wg.Wait()

		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Len(found.Timeline, 21) // creation event + 20 notes
		s.Equal(c.Version+20, found.Version)
	})
}
