package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"sahaya/internal/assignment"
	"sahaya/internal/audit"
	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
	"sahaya/pkg/requestcontext"
)

// CreateRequest carries intake data for a new case.
type CreateRequest struct {
	Category    domain.Category
	Title       string
	Applicant   string
	Description string
	Priority    domain.Priority
}

// Create registers a new case in its category's initial status. Priority only
// applies to SLA-bearing categories; it defaults to P3 there and is discarded
// elsewhere.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Case, error) {
	start := time.Now()
	if !req.Category.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnknownCategory, "unknown category: "+req.Category.String())
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	req.Applicant = strings.TrimSpace(req.Applicant)
	if req.Applicant == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "applicant is required")
	}
	if registry.SLABearing(req.Category) {
		if req.Priority == "" {
			req.Priority = domain.PriorityP3
		} else if !req.Priority.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown priority: "+req.Priority.String())
		}
	} else {
		req.Priority = ""
	}

	initial, err := registry.InitialStatus(req.Category)
	if err != nil {
		return nil, err
	}

	id := domain.NewCaseID(req.Category)
	ctx, span := s.startSpan(ctx, "create", id)
	defer span.End()

	c := models.NewCase(id, req.Category, initial, req.Title, req.Applicant,
		req.Description, req.Priority, requestcontext.Actor(ctx), requestcontext.Now(ctx))
	if err := s.store.Create(ctx, c); err != nil {
		return nil, wrapStoreErr(err, id)
	}

	if s.metrics != nil {
		s.metrics.IncrementCaseCreated(c.Category.String())
		s.metrics.ObserveCommand("create", start)
	}
	s.emitAudit(ctx, c, audit.EventCaseCreated, "initial status "+initial.String())
	s.notify(ctx, c.ID, c.Applicant, "Your "+c.Category.Label()+" case "+c.ID.String()+" has been registered")
	return c, nil
}

// TransitionStatus moves a case to a new status after the category vocabulary
// approves the step. Terminal statuses freeze the case.
func (s *Service) TransitionStatus(ctx context.Context, caseID domain.CaseID, to domain.Status) (*models.Case, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "transition", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	var category domain.Category
	c, err := s.store.Execute(ctx, caseID,
		func(c *models.Case) error {
			category = c.Category
			return registry.CheckTransition(c.Category, c.Status, to)
		},
		func(c *models.Case) {
			c.ApplyTransition(to, registry.IsTerminal(c.Category, to), actor, now)
		},
	)
	if err != nil {
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
			s.metrics.IncrementTransitionRejected(category.String())
		}
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.IncrementTransitionApplied(c.Category.String())
		s.metrics.ObserveCommand("transition", start)
	}
	s.emitAudit(ctx, c, audit.EventStatusChanged, "now "+to.String())
	s.notify(ctx, c.ID, c.Applicant, "Case "+c.ID.String()+" is now "+to.String())
	return c, nil
}

// Assign hands the case to an officer. Assignment is deliberately not gated
// by the status machine: ownership changes are legal at any point in a case's
// life.
func (s *Service) Assign(ctx context.Context, caseID domain.CaseID, assignee domain.AssigneeRef) (*models.Case, error) {
	start := time.Now()
	if assignee.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "assignee is required")
	}
	ctx, span := s.startSpan(ctx, "assign", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	c, err := s.store.Execute(ctx, caseID, nil, func(c *models.Case) {
		c.ApplyAssignment(assignee, actor, now)
	})
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommand("assign", start)
	}
	s.emitAudit(ctx, c, audit.EventCaseAssigned, "assigned to "+assignee.String())
	s.notify(ctx, c.ID, assignee.String(), "Case "+c.ID.String()+" has been assigned to you")
	return c, nil
}

// Route refers the case outward to a department under a fresh reference
// number. Routing records the referral; it never moves the status machine.
func (s *Service) Route(ctx context.Context, caseID domain.CaseID, req assignment.RoutingRequest) (*models.Case, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "route", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	record, err := s.assignments.BuildRouting(ctx, req, actor, now)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Execute(ctx, caseID, nil, func(c *models.Case) {
		c.ApplyRouting(record, actor, now)
	})
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommand("route", start)
	}
	s.emitAudit(ctx, c, audit.EventCaseRouted, record.Department+" ref "+record.Reference)
	return c, nil
}

// SubmitDocument attaches a document to the case's verification workflow,
// opening the workflow on first submission. Returns the minted document id.
func (s *Service) SubmitDocument(ctx context.Context, caseID domain.CaseID, name string, size int64) (domain.DocumentID, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "document name is required")
	}
	if size <= 0 {
		return domain.DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "document size must be positive")
	}
	ctx, span := s.startSpan(ctx, "submit_document", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)
	docID := domain.NewDocumentID()

	c, err := s.store.Execute(ctx, caseID,
		func(c *models.Case) error {
			if c.IsClosed() {
				return dErrors.New(dErrors.CodeInvariantViolation,
					"case "+caseID.String()+" is closed; no further documents accepted")
			}
			if c.Verification != nil {
				return c.Verification.CanSubmitDocument()
			}
			return nil
		},
		func(c *models.Case) {
			if c.Verification == nil {
				c.Verification = models.NewVerificationCase()
			}
			c.Verification.ApplySubmitDocument(docID, name, size, now)
			c.UpdatedAt = now
			c.AppendEvent(models.TimelineEvent{
				Timestamp: now,
				Actor:     actor.ID,
				Kind:      models.EventKindUser,
				Action:    "Document submitted",
				Detail:    name,
			})
		},
	)
	if err != nil {
		return domain.DocumentID{}, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommand("submit_document", start)
	}
	s.emitAudit(ctx, c, audit.EventDocumentSubmitted, name)
	return docID, nil
}

// ReviewDocument records an approve/reject decision on a pending document.
// The reviewer's stage comes from their role and must match the workflow's
// current stage.
func (s *Service) ReviewDocument(ctx context.Context, caseID domain.CaseID, docID domain.DocumentID, approve bool, comments string) (*models.Case, error) {
	start := time.Now()
	if docID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document id is required")
	}
	ctx, span := s.startSpan(ctx, "review_document", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	stage := actor.Role.ReviewStage()
	if stage == 0 {
		return nil, dErrors.New(dErrors.CodeForbidden, "role "+string(actor.Role)+" cannot review documents")
	}
	now := requestcontext.Now(ctx)

	c, err := s.store.Execute(ctx, caseID,
		func(c *models.Case) error {
			if c.IsClosed() {
				return dErrors.New(dErrors.CodeInvariantViolation,
					"case "+caseID.String()+" is closed; documents can no longer be reviewed")
			}
			if c.Verification == nil {
				return dErrors.New(dErrors.CodeNotFound, "case "+caseID.String()+" has no verification workflow")
			}
			return c.Verification.CanReviewDocument(docID, stage)
		},
		func(c *models.Case) {
			doc := c.Verification.ApplyReviewDocument(docID, actor.ID, approve, comments, now)
			c.UpdatedAt = now
			c.AppendEvent(models.TimelineEvent{
				Timestamp: now,
				Actor:     actor.ID,
				Kind:      models.EventKindUser,
				Action:    "Document reviewed",
				Detail:    doc.Name + " " + string(doc.Status),
			})
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		decision := "rejected"
		if approve {
			decision = "approved"
		}
		s.metrics.IncrementDocumentReviewed(decision)
		s.metrics.ObserveCommand("review_document", start)
	}
	s.emitAudit(ctx, c, audit.EventDocumentReviewed, docID.String())
	return c, nil
}

// CompleteStage closes out a review stage once every document carries the
// stage's approval. Completing stage 1 re-opens documents for stage 2;
// completing stage 2 verifies the case. A command that arrives after the
// stage has already advanced gets CodeStageCompleted, which the transport
// reports as success.
func (s *Service) CompleteStage(ctx context.Context, caseID domain.CaseID, stage int) (*models.Case, error) {
	start := time.Now()
	if stage != 1 && stage != 2 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "stage must be 1 or 2")
	}
	ctx, span := s.startSpan(ctx, "complete_stage", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	if actor.Role.ReviewStage() != stage {
		return nil, dErrors.New(dErrors.CodeForbidden,
			"role "+string(actor.Role)+" cannot complete stage "+strconv.Itoa(stage))
	}
	now := requestcontext.Now(ctx)

	c, err := s.store.Execute(ctx, caseID,
		func(c *models.Case) error {
			if c.IsClosed() {
				return dErrors.New(dErrors.CodeInvariantViolation,
					"case "+caseID.String()+" is closed; verification is frozen")
			}
			if c.Verification == nil {
				return dErrors.New(dErrors.CodeNotFound, "case "+caseID.String()+" has no verification workflow")
			}
			return c.Verification.CanCompleteStage(stage)
		},
		func(c *models.Case) {
			c.Verification.ApplyCompleteStage(now)
			c.UpdatedAt = now
			c.AppendEvent(models.TimelineEvent{
				Timestamp: now,
				Actor:     actor.ID,
				Kind:      models.EventKindSystem,
				Action:    "Review stage completed",
				Detail:    "stage " + strconv.Itoa(stage) + ", now " + string(c.Verification.OverallStatus),
			})
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommand("complete_stage", start)
	}
	s.emitAudit(ctx, c, audit.EventStageCompleted, "stage "+strconv.Itoa(stage))
	if c.Verification.OverallStatus == models.OverallVerified {
		s.notify(ctx, c.ID, c.Applicant, "Documents for case "+c.ID.String()+" are fully verified")
	}
	return c, nil
}

// RejectVerification terminates the whole review workflow. The case itself
// stays open; rejection of documents is not rejection of the case.
func (s *Service) RejectVerification(ctx context.Context, caseID domain.CaseID, reason string) (*models.Case, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "reject_verification", caseID)
	defer span.End()

	actor := requestcontext.Actor(ctx)
	if actor.Role.ReviewStage() == 0 {
		return nil, dErrors.New(dErrors.CodeForbidden, "role "+string(actor.Role)+" cannot reject verification")
	}
	now := requestcontext.Now(ctx)

	c, err := s.store.Execute(ctx, caseID,
		func(c *models.Case) error {
			if c.IsClosed() {
				return dErrors.New(dErrors.CodeInvariantViolation,
					"case "+caseID.String()+" is closed; verification is frozen")
			}
			if c.Verification == nil {
				return dErrors.New(dErrors.CodeNotFound, "case "+caseID.String()+" has no verification workflow")
			}
			return c.Verification.CanReject()
		},
		func(c *models.Case) {
			c.Verification.ApplyReject()
			c.UpdatedAt = now
			c.AppendEvent(models.TimelineEvent{
				Timestamp: now,
				Actor:     actor.ID,
				Kind:      models.EventKindSystem,
				Action:    "Verification rejected",
				Detail:    reason,
			})
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, caseID)
	}

	if s.metrics != nil {
		s.metrics.ObserveCommand("reject_verification", start)
	}
	s.emitAudit(ctx, c, audit.EventVerificationRejected, reason)
	s.notify(ctx, c.ID, c.Applicant, "Document verification for case "+c.ID.String()+" was rejected")
	return c, nil
}
