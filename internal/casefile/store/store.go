// Package store persists Case aggregates. Implementations return sentinel
// errors for infrastructure facts; the service layer translates them into
// domain errors.
package store

import (
	"context"

	"sahaya/internal/casefile/models"
	"sahaya/pkg/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Category domain.Category
	Assignee domain.AssigneeRef
}

// Store is the persistence port for cases.
//
// Execute is the atomic unit for mutations: it loads the case, runs validate
// then mutate while holding the case's lock (mutex in memory, row lock in
// SQL), and commits the bumped version. Two different cases never contend.
type Store interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error)
	List(ctx context.Context, filter Filter) ([]*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	Execute(ctx context.Context, id domain.CaseID, validate func(c *models.Case) error, mutate func(c *models.Case)) (*models.Case, error)
}
