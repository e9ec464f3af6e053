package audit

import (
	"time"

	"sahaya/pkg/domain"
)

// Event is emitted from case lifecycle logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	CaseID    domain.CaseID   `json:"caseId"`
	Category  domain.Category `json:"category"`
	ActorID   string          `json:"actorId"`
	ActorRole domain.Role     `json:"actorRole"`
	Action    string          `json:"action"`
	Detail    string          `json:"detail,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

type AuditEvent string

const (
	EventCaseCreated          AuditEvent = "case_created"
	EventStatusChanged        AuditEvent = "status_changed"
	EventCaseAssigned         AuditEvent = "case_assigned"
	EventCaseRouted           AuditEvent = "case_routed"
	EventDocumentSubmitted    AuditEvent = "document_submitted"
	EventDocumentReviewed     AuditEvent = "document_reviewed"
	EventStageCompleted       AuditEvent = "stage_completed"
	EventVerificationRejected AuditEvent = "verification_rejected"
)
