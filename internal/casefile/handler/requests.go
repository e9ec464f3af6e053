package handler

import (
	"time"

	"sahaya/internal/assignment"
	"sahaya/internal/casefile/service"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

type createCaseRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Applicant   string `json:"applicant"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (r createCaseRequest) toService() (service.CreateRequest, error) {
	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		return service.CreateRequest{}, err
	}
	req := service.CreateRequest{
		Category:    category,
		Title:       r.Title,
		Applicant:   r.Applicant,
		Description: r.Description,
	}
	if r.Priority != "" {
		priority, err := domain.ParsePriority(r.Priority)
		if err != nil {
			return service.CreateRequest{}, err
		}
		req.Priority = priority
	}
	return req, nil
}

type transitionRequest struct {
	To string `json:"to"`
}

func (r transitionRequest) status() (domain.Status, error) {
	if r.To == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "target status is required")
	}
	return domain.Status(r.To), nil
}

type assignRequest struct {
	Assignee string `json:"assignee"`
}

type routeRequest struct {
	Department   string `json:"department"`
	Officer      string `json:"officer"`
	Memo         string `json:"memo"`
	Priority     string `json:"priority"`
	ExpectedDate string `json:"expected_date"`
}

func (r routeRequest) toService() (assignment.RoutingRequest, error) {
	req := assignment.RoutingRequest{
		Department: r.Department,
		Officer:    r.Officer,
		Memo:       r.Memo,
	}
	if r.Priority != "" {
		priority, err := domain.ParsePriority(r.Priority)
		if err != nil {
			return assignment.RoutingRequest{}, err
		}
		req.Priority = priority
	}
	if r.ExpectedDate != "" {
		expected, err := time.Parse("2006-01-02", r.ExpectedDate)
		if err != nil {
			return assignment.RoutingRequest{}, dErrors.New(dErrors.CodeInvalidInput,
				"expected_date must be YYYY-MM-DD")
		}
		req.ExpectedDate = expected
	}
	return req, nil
}

type submitDocumentRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type reviewDocumentRequest struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments"`
}

type completeStageRequest struct {
	Stage int `json:"stage"`
}

type rejectVerificationRequest struct {
	Reason string `json:"reason"`
}
