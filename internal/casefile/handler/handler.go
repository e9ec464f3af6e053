// Package handler exposes the case lifecycle over HTTP. Handlers stay thin:
// decode, delegate to the service, translate the outcome.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sahaya/internal/assignment"
	"sahaya/internal/casefile/models"
	"sahaya/internal/casefile/service"
	"sahaya/internal/casefile/store"
	"sahaya/internal/platform/middleware"
	"sahaya/internal/sla"
	"sahaya/internal/workqueue"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
	"sahaya/pkg/platform/httputil"
)

// Service is the orchestrator surface the transport needs.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*models.Case, error)
	TransitionStatus(ctx context.Context, caseID domain.CaseID, to domain.Status) (*models.Case, error)
	Assign(ctx context.Context, caseID domain.CaseID, assignee domain.AssigneeRef) (*models.Case, error)
	Route(ctx context.Context, caseID domain.CaseID, req assignment.RoutingRequest) (*models.Case, error)
	SubmitDocument(ctx context.Context, caseID domain.CaseID, name string, size int64) (domain.DocumentID, error)
	ReviewDocument(ctx context.Context, caseID domain.CaseID, docID domain.DocumentID, approve bool, comments string) (*models.Case, error)
	CompleteStage(ctx context.Context, caseID domain.CaseID, stage int) (*models.Case, error)
	RejectVerification(ctx context.Context, caseID domain.CaseID, reason string) (*models.Case, error)

	GetCase(ctx context.Context, caseID domain.CaseID) (*models.Case, error)
	ListCases(ctx context.Context, filter store.Filter) ([]*models.Case, error)
	SLAStatus(ctx context.Context, caseID domain.CaseID) (sla.Snapshot, error)
	VerificationProgress(ctx context.Context, caseID domain.CaseID) (service.VerificationStatus, error)
	Workload(ctx context.Context, officer domain.AssigneeRef) (int, error)
	Queue(ctx context.Context, req service.QueueRequest) (workqueue.Page, error)
	Approvals(ctx context.Context) ([]workqueue.Item, error)
}

// Handler serves the case lifecycle endpoints.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

// New creates a case Handler.
func New(svc Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{service: svc, logger: logger, validator: validator}
}

// Register mounts the case routes on r.
func (h *Handler) Register(r chi.Router) {
	caseRouter := chi.NewRouter()
	caseRouter.Use(middleware.Recovery(h.logger))
	caseRouter.Use(middleware.RequestID)
	caseRouter.Use(middleware.Clock)
	caseRouter.Use(middleware.Logger(h.logger))
	caseRouter.Use(middleware.RequireAuth(h.validator, h.logger))

	caseRouter.Post("/cases", h.handleCreate)
	caseRouter.Get("/cases", h.handleList)
	caseRouter.Get("/cases/{caseID}", h.handleGet)
	caseRouter.Post("/cases/{caseID}/transition", h.handleTransition)
	caseRouter.Post("/cases/{caseID}/assign", h.handleAssign)
	caseRouter.Post("/cases/{caseID}/route", h.handleRoute)
	caseRouter.Post("/cases/{caseID}/documents", h.handleSubmitDocument)
	caseRouter.Post("/cases/{caseID}/documents/{docID}/review", h.handleReviewDocument)
	caseRouter.Post("/cases/{caseID}/verification/complete-stage", h.handleCompleteStage)
	caseRouter.Post("/cases/{caseID}/verification/reject", h.handleRejectVerification)
	caseRouter.Get("/cases/{caseID}/sla", h.handleSLA)
	caseRouter.Get("/cases/{caseID}/verification", h.handleVerification)
	caseRouter.Get("/queue", h.handleQueue)
	caseRouter.Get("/queue/approvals", h.handleApprovals)
	caseRouter.Get("/officers/{officerID}/workload", h.handleWorkload)

	r.Mount("/", caseRouter)
}

func caseIDFrom(r *http.Request) (domain.CaseID, error) {
	return domain.ParseCaseID(chi.URLParam(r, "caseID"))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	svcReq, err := req.toService()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Create(r.Context(), svcReq)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCaseResponse(c))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.GetCase(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		Assignee: domain.AssigneeRef(r.URL.Query().Get("assignee")),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Category = category
	}
	cases, err := h.service.ListCases(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseListResponse(cases))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req transitionRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := req.status()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.TransitionStatus(r.Context(), caseID, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req assignRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Assign(r.Context(), caseID, domain.AssigneeRef(req.Assignee))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req routeRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	svcReq, err := req.toService()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Route(r.Context(), caseID, svcReq)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req submitDocumentRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := h.service.SubmitDocument(r.Context(), caseID, req.Name, req.Size)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, documentSubmittedResponse{
		DocumentID: docID.String(),
		Status:     string(models.DocPending),
	})
}

func (h *Handler) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := domain.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req reviewDocumentRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.ReviewDocument(r.Context(), caseID, docID, req.Approve, req.Comments)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleCompleteStage(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req completeStageRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.CompleteStage(r.Context(), caseID, req.Stage)
	if err != nil {
		// The race loser's stage is already advanced; report success so
		// duplicate submit-clicks are harmless.
		if dErrors.HasCode(err, dErrors.CodeStageCompleted) {
			httputil.WriteJSON(w, http.StatusOK, stageAlreadyCompletedResponse{Result: "already advanced"})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleRejectVerification(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req rejectVerificationRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.RejectVerification(r.Context(), caseID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleSLA(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	snapshot, err := h.service.SLAStatus(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleVerification(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := h.service.VerificationProgress(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := service.QueueRequest{
		Query:      query.Get("q"),
		SortColumn: query.Get("sort"),
		Descending: query.Get("order") == "desc",
	}
	if raw := query.Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req.Filter.Category = category
	}
	req.Refine = workqueue.Filters{
		Status:   domain.Status(query.Get("status")),
		Assignee: domain.AssigneeRef(query.Get("assignee")),
		SLAState: sla.State(query.Get("sla_state")),
	}
	if raw := query.Get("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req.Refine.Priority = priority
	}
	if raw := query.Get("page"); raw != "" {
		req.Page, _ = strconv.Atoi(raw)
	}
	if raw := query.Get("page_size"); raw != "" {
		req.PageSize, _ = strconv.Atoi(raw)
	}

	page, err := h.service.Queue(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleApprovals(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Approvals(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []workqueue.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *Handler) handleWorkload(w http.ResponseWriter, r *http.Request) {
	officer := domain.AssigneeRef(chi.URLParam(r, "officerID"))
	count, err := h.service.Workload(r.Context(), officer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newWorkloadResponse(officer, count))
}
