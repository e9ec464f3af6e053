//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sahaya/internal/casefile/models"
	"sahaya/internal/casefile/store"
	"sahaya/internal/registry"
	"sahaya/pkg/domain"
	"sahaya/pkg/platform/sentinel"
	"sahaya/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "cases")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newStoredCase(category domain.Category) *models.Case {
	initial, err := registry.InitialStatus(category)
	s.Require().NoError(err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := domain.Actor{ID: "ctz-100", Role: domain.RoleCitizen}
	return models.NewCase(
		domain.NewCaseID(category),
		category,
		initial,
		"Streetlight outage on MG Road",
		"ctz-100",
		"Three lights out near the junction",
		domain.PriorityP2,
		actor,
		now,
	)
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)
	s.Equal(c.Status, found.Status)
	s.Equal(c.Priority, found.Priority)
	s.Len(found.Timeline, 1)
}

func (s *PostgresStoreSuite) TestCreateDuplicateID() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	err := s.store.Create(ctx, c)
	s.ErrorIs(err, sentinel.ErrAlreadyExists)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), domain.NewCaseID(domain.CategoryDispute))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	grievance := s.newStoredCase(domain.CategoryGrievance)
	dispute := s.newStoredCase(domain.CategoryDispute)
	s.Require().NoError(s.store.Create(ctx, grievance))
	s.Require().NoError(s.store.Create(ctx, dispute))

	all, err := s.store.List(ctx, store.Filter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	disputes, err := s.store.List(ctx, store.Filter{Category: domain.CategoryDispute})
	s.Require().NoError(err)
	s.Require().Len(disputes, 1)
	s.Equal(dispute.ID, disputes[0].ID)
}

func (s *PostgresStoreSuite) TestListByAssignee() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	_, err := s.store.Execute(ctx, c.ID, nil, func(working *models.Case) {
		working.ApplyAssignment("off-7", officer, time.Now().UTC())
	})
	s.Require().NoError(err)

	assigned, err := s.store.List(ctx, store.Filter{Assignee: "off-7"})
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(c.ID, assigned[0].ID)

	none, err := s.store.List(ctx, store.Filter{Assignee: "off-99"})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PostgresStoreSuite) TestUpdateStaleVersionLoses() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	first, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Update(ctx, first))

	err = s.store.Update(ctx, second)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestExecuteValidateFailureLeavesRowUntouched() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	boom := errors.New("precondition failed")
	_, err := s.store.Execute(ctx, c.ID,
		func(*models.Case) error { return boom },
		func(working *models.Case) { working.Title = "mutated" },
	)
	s.ErrorIs(err, boom)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Title, found.Title)
	s.Equal(c.Version, found.Version)
}

// TestConcurrentExecutes verifies the FOR UPDATE row lock serialises
// validate-then-mutate cycles: every append lands and the version reflects
// every write.
func (s *PostgresStoreSuite) TestConcurrentExecutes() {
	ctx := context.Background()
	c := s.newStoredCase(domain.CategoryGrievance)
	s.Require().NoError(s.store.Create(ctx, c))

	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, c.ID, nil, func(working *models.Case) {
				working.AppendEvent(models.TimelineEvent{
					Timestamp: time.Now().UTC(),
					Actor:     "off-1",
					Kind:      models.EventKindUser,
					Action:    "Note added",
				})
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Len(found.Timeline, writers+1)
	s.Equal(c.Version+writers, found.Version)
}
