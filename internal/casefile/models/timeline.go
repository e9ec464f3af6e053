package models

import (
	"time"

	"sahaya/pkg/domain"
)

// EventKind classifies timeline entries for display grouping.
type EventKind string

const (
	EventKindSystem     EventKind = "system"
	EventKindUser       EventKind = "user"
	EventKindStatus     EventKind = "status"
	EventKindAssignment EventKind = "assignment"
)

// TimelineEvent is an immutable audit record on a case. Events are only ever
// appended, never edited or removed.
type TimelineEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Kind      EventKind `json:"kind"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// RoutingRecord captures one outward referral of a case to a department.
// The reference number is derived deterministically from department code,
// date, and a sequence counter.
type RoutingRecord struct {
	Reference    string          `json:"reference"`
	Department   string          `json:"department"`
	Officer      string          `json:"officer,omitempty"`
	Memo         string          `json:"memo,omitempty"`
	Priority     domain.Priority `json:"priority,omitempty"`
	ExpectedDate time.Time       `json:"expected_date,omitzero"`
	RoutedBy     string          `json:"routed_by"`
	RoutedAt     time.Time       `json:"routed_at"`
}
