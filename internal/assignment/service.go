package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

var departmentCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}$`)

// Service owns officer workload counts and routing reference generation.
// Assignment itself is a timeline mutation on the case aggregate; the
// orchestrator applies it through the store, this service supplies the
// surrounding policy.
type Service struct {
	sequencer Sequencer
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithSequencer(seq Sequencer) Option {
	return func(s *Service) { s.sequencer = seq }
}

func New(opts ...Option) *Service {
	s := &Service{
		sequencer: NewLocalSequencer(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workload counts the non-terminal cases an officer currently holds. The
// count is advisory: it informs routing decisions but never blocks an
// assignment.
func (s *Service) Workload(officer domain.AssigneeRef, cases []*models.Case) int {
	n := 0
	for _, c := range cases {
		if c.AssignedTo != officer {
			continue
		}
		if registry.IsTerminal(c.Category, c.Status) {
			continue
		}
		n++
	}
	return n
}

// RoutingRequest carries the inputs for routing a case outward to a
// department.
type RoutingRequest struct {
	Department   string
	Officer      string
	Memo         string
	Priority     domain.Priority
	ExpectedDate time.Time
}

// BuildRouting validates the request and mints a RoutingRecord with a fresh
// DEPT/SP/YYYYMMDD/NNNN reference. Routing never touches the status machine.
func (s *Service) BuildRouting(ctx context.Context, req RoutingRequest, routedBy domain.Actor, now time.Time) (models.RoutingRecord, error) {
	dept := strings.ToUpper(strings.TrimSpace(req.Department))
	if !departmentCodePattern.MatchString(dept) {
		return models.RoutingRecord{}, dErrors.New(dErrors.CodeInvalidInput, "department code must be 2-12 uppercase alphanumerics")
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return models.RoutingRecord{}, dErrors.New(dErrors.CodeInvalidInput, "unknown priority: "+req.Priority.String())
	}

	seq, err := s.sequencer.Next(ctx, dept, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "routing sequence allocation failed", "department", dept, "error", err)
		return models.RoutingRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "allocate routing reference")
	}

	return models.RoutingRecord{
		Reference:    fmt.Sprintf("%s/SP/%s/%04d", dept, now.Format("20060102"), seq),
		Department:   dept,
		Officer:      req.Officer,
		Memo:         req.Memo,
		Priority:     req.Priority,
		ExpectedDate: req.ExpectedDate,
		RoutedBy:     routedBy.ID,
		RoutedAt:     now,
	}, nil
}
