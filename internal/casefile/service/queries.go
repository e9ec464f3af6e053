package service

import (
	"context"

	"sahaya/internal/casefile/models"
	"sahaya/internal/casefile/store"
	"sahaya/internal/registry"
	"sahaya/internal/sla"
	"sahaya/internal/workqueue"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
	"sahaya/pkg/requestcontext"
)

// GetCase loads one case with its full timeline.
func (s *Service) GetCase(ctx context.Context, caseID domain.CaseID) (*models.Case, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}
	return c, nil
}

// ListCases returns cases matching the filter.
func (s *Service) ListCases(ctx context.Context, filter store.Filter) ([]*models.Case, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnknownCategory, "unknown category: "+filter.Category.String())
	}
	cases, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cases")
	}
	return cases, nil
}

// SLAStatus computes the deadline snapshot for one case. The clock reads
// wall time while the case is open and freezes at closure.
func (s *Service) SLAStatus(ctx context.Context, caseID domain.CaseID) (sla.Snapshot, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		return sla.Snapshot{}, wrapStoreErr(err, caseID)
	}
	if !registry.SLABearing(c.Category) {
		return sla.Snapshot{}, dErrors.New(dErrors.CodeBadRequest,
			c.Category.Label()+" cases do not carry an SLA deadline")
	}
	now := requestcontext.Now(ctx)
	return sla.Evaluate(c.Priority, c.CreatedAt, c.SLAClock(now)), nil
}

// VerificationStatus is the read-side view of a case's document workflow.
type VerificationStatus struct {
	OverallStatus models.OverallStatus    `json:"overall_status"`
	CurrentStage  int                     `json:"current_stage"`
	Progress      int                     `json:"progress"`
	Documents     []models.DocumentReview `json:"documents"`
}

// VerificationProgress reports the workflow phase and per-document states.
func (s *Service) VerificationProgress(ctx context.Context, caseID domain.CaseID) (VerificationStatus, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		return VerificationStatus{}, wrapStoreErr(err, caseID)
	}
	if c.Verification == nil {
		return VerificationStatus{}, dErrors.New(dErrors.CodeNotFound,
			"case "+caseID.String()+" has no verification workflow")
	}
	return VerificationStatus{
		OverallStatus: c.Verification.OverallStatus,
		CurrentStage:  c.Verification.CurrentStage,
		Progress:      c.Verification.Progress(),
		Documents:     append([]models.DocumentReview(nil), c.Verification.Documents...),
	}, nil
}

// Workload counts the open cases an officer holds.
func (s *Service) Workload(ctx context.Context, officer domain.AssigneeRef) (int, error) {
	if officer.IsZero() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "officer is required")
	}
	cases, err := s.store.List(ctx, store.Filter{Assignee: officer})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "list cases for workload")
	}
	return s.assignments.Workload(officer, cases), nil
}

// QueueRequest shapes a work queue page.
type QueueRequest struct {
	Filter     store.Filter
	Query      string
	Refine     workqueue.Filters
	SortColumn string
	Descending bool
	Page       int
	PageSize   int
}

// Queue builds the read-side queue projection: load, project, search, filter,
// sort, paginate. All transforms are stateless.
func (s *Service) Queue(ctx context.Context, req QueueRequest) (workqueue.Page, error) {
	cases, err := s.ListCases(ctx, req.Filter)
	if err != nil {
		return workqueue.Page{}, err
	}
	now := requestcontext.Now(ctx)
	items := workqueue.Items(cases, now)
	items = workqueue.Search(items, req.Query)
	items = workqueue.Filter(items, req.Refine)
	items, err = workqueue.Sort(items, req.SortColumn, req.Descending)
	if err != nil {
		return workqueue.Page{}, err
	}
	return workqueue.Paginate(items, req.Page, req.PageSize), nil
}

// Approvals lists the queue rows waiting on the calling actor's role.
func (s *Service) Approvals(ctx context.Context) ([]workqueue.Item, error) {
	cases, err := s.store.List(ctx, store.Filter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list cases for approvals")
	}
	actor := requestcontext.Actor(ctx)
	return workqueue.MyApprovals(cases, actor.Role, requestcontext.Now(ctx)), nil
}
