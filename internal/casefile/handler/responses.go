package handler

import (
	"time"

	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/pkg/domain"
)

type caseResponse struct {
	ID            string                   `json:"id"`
	Category      string                   `json:"category"`
	CategoryLabel string                   `json:"category_label"`
	Title         string                   `json:"title"`
	Applicant     string                   `json:"applicant"`
	Description   string                   `json:"description,omitempty"`
	Status        string                   `json:"status"`
	NextStatuses  []string                 `json:"next_statuses"`
	Priority      string                   `json:"priority,omitempty"`
	AssignedTo    string                   `json:"assigned_to,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	ClosedAt      *time.Time               `json:"closed_at,omitempty"`
	Version       int64                    `json:"version"`
	Timeline      []models.TimelineEvent   `json:"timeline"`
	Routings      []models.RoutingRecord   `json:"routings,omitempty"`
	Verification  *models.VerificationCase `json:"verification,omitempty"`
}

func toCaseResponse(c *models.Case) caseResponse {
	next := make([]string, 0)
	for _, status := range registry.NextStatuses(c.Category, c.Status) {
		next = append(next, status.String())
	}
	return caseResponse{
		ID:            c.ID.String(),
		Category:      c.Category.String(),
		CategoryLabel: c.Category.Label(),
		Title:         c.Title,
		Applicant:     c.Applicant,
		Description:   c.Description,
		Status:        c.Status.String(),
		NextStatuses:  next,
		Priority:      c.Priority.String(),
		AssignedTo:    c.AssignedTo.String(),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		ClosedAt:      c.ClosedAt,
		Version:       c.Version,
		Timeline:      c.Timeline,
		Routings:      c.Routings,
		Verification:  c.Verification,
	}
}

type caseListResponse struct {
	Cases []caseResponse `json:"cases"`
	Total int            `json:"total"`
}

func toCaseListResponse(cases []*models.Case) caseListResponse {
	out := caseListResponse{Cases: make([]caseResponse, 0, len(cases))}
	for _, c := range cases {
		out.Cases = append(out.Cases, toCaseResponse(c))
	}
	out.Total = len(out.Cases)
	return out
}

type documentSubmittedResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// stageAlreadyCompletedResponse is the success-equivalent body for a
// completeStage race loser: the stage is advanced, just not by this call.
type stageAlreadyCompletedResponse struct {
	Result string `json:"result"`
}

type workloadResponse struct {
	Officer   string `json:"officer"`
	OpenCases int    `json:"open_cases"`
}

func newWorkloadResponse(officer domain.AssigneeRef, count int) workloadResponse {
	return workloadResponse{Officer: officer.String(), OpenCases: count}
}
