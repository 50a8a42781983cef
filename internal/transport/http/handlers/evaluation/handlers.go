package evaluationhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/domain/audit"
	"hospadmin/internal/domain/auth"
	"hospadmin/internal/domain/criteria"
	"hospadmin/internal/domain/duties"
	"hospadmin/internal/domain/evaluation"
	"hospadmin/internal/domain/notifications"
	"hospadmin/internal/transport/http/api"
	"hospadmin/internal/transport/http/middleware"
	"hospadmin/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Duties  *duties.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, dutySvc *duties.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Duties: dutySvc, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.Get("/", h.handleListCycles)
		r.Post("/", h.handleCreateCycle)
		r.Get("/{cycleID}", h.handleGetCycle)
		r.Put("/{cycleID}", h.handleUpdateCycle)
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{evaluationID}", h.handleGet)
		r.Delete("/{evaluationID}", h.handleDelete)
		r.Post("/{evaluationID}/approve", h.handleApprove)
		r.Post("/{evaluationID}/revoke", h.handleRevoke)
		r.Post("/{evaluationID}/feedback", h.handleFeedback)
	})

	r.Route("/duty-evaluations", func(r chi.Router) {
		r.Get("/{dutyEvalID}", h.handleGetDuty)
		r.Delete("/{dutyEvalID}", h.handleDeleteDuty)
		r.Post("/{dutyEvalID}/score", h.handleScore)
		r.Post("/{dutyEvalID}/clamp", h.handleClamp)
		r.Get("/{dutyEvalID}/reconcile", h.handlePreviewReconcile)
		r.Post("/{dutyEvalID}/reconcile", h.handleReconcile)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		CycleID    string `json:"cycleId"`
		EmployeeID string `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("cycleId", payload.CycleID, "cycle id is required")
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assigned, err := h.Duties.ListAssigned(r.Context(), payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_create_failed", "failed to load assigned duties", middleware.GetRequestID(r.Context()))
		return
	}
	seeds := make([]evaluation.DutySeed, 0, len(assigned))
	for _, duty := range assigned {
		seeds = append(seeds, evaluation.DutySeed{
			DutyID:            duty.DutyID,
			Name:              duty.Name,
			DefaultDifficulty: duty.DefaultDifficulty,
		})
	}

	eval, err := h.Service.CreateEvaluation(r.Context(), payload.CycleID, payload.EmployeeID, actor.EmployeeID, seeds)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Created(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	evals, err := h.Service.List(r.Context(), r.URL.Query().Get("cycleId"), r.URL.Query().Get("employeeId"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, evals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	eval, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "evaluationID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		failEvaluation(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.delete", "kpi_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit evaluation.delete failed", "err", err)
	}
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Remarks string `json:"remarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "evaluationID")
	eval, err := h.Service.Approve(r.Context(), id, payload.Remarks)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.approve", "kpi_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, eval); err != nil {
		slog.Warn("audit evaluation.approve failed", "err", err)
	}
	if err := h.Notify.Notify(r.Context(), eval.EmployeeID, notifications.TypeEvaluationApproved,
		"KPI evaluation approved", "Your KPI evaluation has been approved. You may now submit feedback."); err != nil {
		slog.Warn("approve notification failed", "err", err)
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		api.Fail(w, http.StatusForbidden, "forbidden", "revoking an approval requires the admin role", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "evaluationID")
	eval, err := h.Service.Revoke(r.Context(), id)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.revoke", "kpi_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, eval); err != nil {
		slog.Warn("audit evaluation.revoke failed", "err", err)
	}
	if err := h.Notify.Notify(r.Context(), eval.EmployeeID, notifications.TypeEvaluationRevoked,
		"KPI evaluation reopened", "The approval of your KPI evaluation was revoked."); err != nil {
		slog.Warn("revoke notification failed", "err", err)
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "evaluationID")
	current, err := h.Service.Get(r.Context(), id)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	if !actor.IsAdmin() && actor.EmployeeID != current.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the evaluated employee may submit feedback", middleware.GetRequestID(r.Context()))
		return
	}

	eval, err := h.Service.SubmitFeedback(r.Context(), id, payload.Text)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	if err := h.Notify.Notify(r.Context(), eval.EvaluatorID, notifications.TypeFeedbackReceived,
		"Evaluation feedback received", "The evaluated employee responded to an approved KPI evaluation."); err != nil {
		slog.Warn("feedback notification failed", "err", err)
	}
	api.Success(w, eval, middleware.GetRequestID(r.Context()))
}

func requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
	}
	return actor, ok
}

func forceRequested(r *http.Request, actor auth.Actor) bool {
	return actor.IsAdmin() && r.URL.Query().Get("force") == "true"
}

func failEvaluation(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var outOfRange *evaluation.ScoreOutOfRangeError
	if errors.As(err, &outOfRange) {
		api.FailWithDetails(w, http.StatusBadRequest, "score_out_of_range", outOfRange.Error(), map[string]any{
			"criterion": outOfRange.Criterion,
			"unit":      outOfRange.Unit,
			"min":       outOfRange.Min,
			"max":       outOfRange.Max,
			"value":     outOfRange.Value,
		}, requestID)
		return
	}
	var unknown *evaluation.UnknownCriterionError
	if errors.As(err, &unknown) {
		api.Fail(w, http.StatusBadRequest, "unknown_criterion", unknown.Error(), requestID)
		return
	}
	var incomplete *evaluation.IncompleteScoringError
	if errors.As(err, &incomplete) {
		api.FailWithDetails(w, http.StatusConflict, "incomplete_scoring", incomplete.Error(), map[string]any{
			"unscoredDuties": incomplete.UnscoredDuties,
		}, requestID)
		return
	}

	switch {
	case errors.Is(err, evaluation.ErrNotFound),
		errors.Is(err, evaluation.ErrDutyNotFound),
		errors.Is(err, evaluation.ErrCycleNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrAlreadyApproved):
		api.Fail(w, http.StatusConflict, "already_approved", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrNotYetApproved):
		api.Fail(w, http.StatusConflict, "not_yet_approved", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrLocked):
		api.Fail(w, http.StatusConflict, "evaluation_locked", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrInvalidDifficulty),
		errors.Is(err, evaluation.ErrInvalidCycleDates),
		errors.Is(err, evaluation.ErrCycleNameRequired),
		errors.Is(err, evaluation.ErrNoEntries),
		errors.Is(err, criteria.ErrInvalidRange),
		errors.Is(err, criteria.ErrInvalidDirection),
		errors.Is(err, criteria.ErrNegativeWeight),
		errors.Is(err, criteria.ErrNameRequired):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "evaluation_operation_failed", "evaluation operation failed", requestID)
	}
}
