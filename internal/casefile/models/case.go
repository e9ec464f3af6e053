// Package models holds the Case aggregate and its embedded records. The case
// is the unit of persistence and of concurrency control: every mutation runs
// as a single validate-then-apply pass under the store's lock, and the
// timeline is appended inside that same pass.
package models

import (
	"time"

	"sahaya/pkg/domain"
)

// Case is the aggregate root for one unit of citizen-service work.
//
// Invariants:
//   - Status is always a member of the category's vocabulary; transitions are
//     validated by the registry before ApplyTransition is called
//   - Category and CreatedAt are immutable after construction
//   - Timeline is append-only; events are never edited or removed
//   - ClosedAt is set exactly once, when the case enters a terminal status
//   - Version increases by one on every committed mutation
type Case struct {
	ID          domain.CaseID      `json:"id"`
	Category    domain.Category    `json:"category"`
	Title       string             `json:"title"`
	Applicant   string             `json:"applicant"`
	Description string             `json:"description,omitempty"`
	Status      domain.Status      `json:"status"`
	Priority    domain.Priority    `json:"priority,omitempty"`
	AssignedTo  domain.AssigneeRef `json:"assigned_to,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ClosedAt    *time.Time         `json:"closed_at,omitempty"`

	Verification *VerificationCase `json:"verification,omitempty"`
	Timeline     []TimelineEvent   `json:"timeline"`
	Routings     []RoutingRecord   `json:"routings,omitempty"`

	Version int64 `json:"version"`
}

// NewCase constructs a case in the given initial status with a seeded timeline.
func NewCase(id domain.CaseID, category domain.Category, initial domain.Status, title, applicant, description string, priority domain.Priority, actor domain.Actor, now time.Time) *Case {
	c := &Case{
		ID:          id,
		Category:    category,
		Title:       title,
		Applicant:   applicant,
		Description: description,
		Status:      initial,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	c.AppendEvent(TimelineEvent{
		Timestamp: now,
		Actor:     actor.ID,
		Kind:      EventKindSystem,
		Action:    "Case created",
		Detail:    "initial status " + initial.String(),
	})
	return c
}

// IsClosed reports whether the case has reached end-of-life. Terminal cases
// accept no further transitions, reviews, or stage completions.
func (c *Case) IsClosed() bool { return c.ClosedAt != nil }

// ApplyTransition moves the case to an already-validated status and records
// the change on the timeline. terminal marks end-of-life and freezes the
// SLA clock at now.
func (c *Case) ApplyTransition(to domain.Status, terminal bool, actor domain.Actor, now time.Time) {
	from := c.Status
	c.Status = to
	c.UpdatedAt = now
	if terminal && c.ClosedAt == nil {
		closedAt := now
		c.ClosedAt = &closedAt
	}
	c.AppendEvent(TimelineEvent{
		Timestamp: now,
		Actor:     actor.ID,
		Kind:      EventKindStatus,
		Action:    "Status changed",
		Detail:    from.String() + " -> " + to.String(),
	})
}

// ApplyAssignment sets or replaces the case owner and records the handover,
// including the prior holder when this is a reassignment.
func (c *Case) ApplyAssignment(assignee domain.AssigneeRef, actor domain.Actor, now time.Time) {
	detail := "assigned to " + assignee.String()
	if !c.AssignedTo.IsZero() && c.AssignedTo != assignee {
		detail += " (previously " + c.AssignedTo.String() + ")"
	}
	c.AssignedTo = assignee
	c.UpdatedAt = now
	c.AppendEvent(TimelineEvent{
		Timestamp: now,
		Actor:     actor.ID,
		Kind:      EventKindAssignment,
		Action:    "Case assigned",
		Detail:    detail,
	})
}

// ApplyRouting records an outward referral. Routing never changes Status; the
// category's transition rules decide separately whether it should.
func (c *Case) ApplyRouting(record RoutingRecord, actor domain.Actor, now time.Time) {
	c.Routings = append(c.Routings, record)
	c.UpdatedAt = now
	c.AppendEvent(TimelineEvent{
		Timestamp: now,
		Actor:     actor.ID,
		Kind:      EventKindSystem,
		Action:    "Routed to department",
		Detail:    record.Department + " ref " + record.Reference,
	})
}

// AppendEvent adds to the append-only timeline.
func (c *Case) AppendEvent(event TimelineEvent) {
	c.Timeline = append(c.Timeline, event)
}

// SLAClock returns the instant the SLA clock reads for this case: wall-clock
// now while open, frozen at ClosedAt once terminal.
func (c *Case) SLAClock(now time.Time) time.Time {
	if c.ClosedAt != nil && c.ClosedAt.Before(now) {
		return *c.ClosedAt
	}
	return now
}

// Clone deep-copies the aggregate so stores never hand out shared slices.
func (c *Case) Clone() *Case {
	clone := *c
	if c.ClosedAt != nil {
		closedAt := *c.ClosedAt
		clone.ClosedAt = &closedAt
	}
	clone.Timeline = append([]TimelineEvent(nil), c.Timeline...)
	clone.Routings = append([]RoutingRecord(nil), c.Routings...)
	if c.Verification != nil {
		clone.Verification = c.Verification.clone()
	}
	return &clone
}
