// Package service is the sole mutation entry point for cases. Every command
// validates its inputs, then runs validate-then-apply atomically through the
// store's Execute, then fires audit and notification best-effort after commit.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sahaya/internal/assignment"
	"sahaya/internal/audit"
	casemetrics "sahaya/internal/casefile/metrics"
	"sahaya/internal/casefile/models"
	"sahaya/internal/casefile/store"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
	"sahaya/pkg/platform/sentinel"
	"sahaya/pkg/requestcontext"
)

// AuditPublisher receives lifecycle events after a command commits.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier pushes user-facing notifications. Dispatch is fire-and-forget:
// failures are logged and never surfaced to the caller.
type Notifier interface {
	Notify(ctx context.Context, caseID domain.CaseID, recipient, message string) error
}

// Service orchestrates the case lifecycle.
type Service struct {
	store          store.Store
	assignments    *assignment.Service
	logger         *slog.Logger
	auditPublisher AuditPublisher
	notifier       Notifier
	metrics        *casemetrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *casemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(cases store.Store, assignments *assignment.Service, opts ...Option) *Service {
	s := &Service{
		store:       cases,
		assignments: assignments,
		logger:      slog.Default(),
		tracer:      otel.Tracer("sahaya/casefile"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// startSpan opens a command span tagged with the case id.
func (s *Service) startSpan(ctx context.Context, command string, caseID domain.CaseID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "casefile."+command,
		trace.WithAttributes(attribute.String("case.id", caseID.String())))
}

// wrapStoreErr translates sentinel errors from the persistence layer into
// domain errors. Domain errors pass through untouched.
func wrapStoreErr(err error, caseID domain.CaseID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case "+caseID.String()+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "case "+caseID.String()+" was modified concurrently")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeConflict, "case "+caseID.String()+" already exists")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "case store failure")
}

// emitAudit publishes a lifecycle event after commit. Best-effort: failures
// are logged and never fail the command.
func (s *Service) emitAudit(ctx context.Context, c *models.Case, action audit.AuditEvent, detail string) {
	actor := requestcontext.Actor(ctx)
	s.logger.InfoContext(ctx, string(action),
		"case_id", c.ID, "category", c.Category, "status", c.Status,
		"actor_id", actor.ID, "detail", detail, "log_type", "audit")
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		CaseID:    c.ID,
		Category:  c.Category,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    string(action),
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "case_id", c.ID, "action", action, "error", err)
	}
}

// notify dispatches a notification without blocking the command or tying its
// fate to the commit.
func (s *Service) notify(ctx context.Context, caseID domain.CaseID, recipient, message string) {
	if s.notifier == nil || recipient == "" {
		return
	}
	// Detach from the request context so an aborted request doesn't cancel
	// the dispatch.
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Notify(detached, caseID, recipient, message); err != nil {
			s.logger.Error("notification dispatch failed", "case_id", caseID, "recipient", recipient, "error", err)
		}
	}()
}
