package workitemhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/domain/audit"
	"hospadmin/internal/domain/auth"
	"hospadmin/internal/domain/notifications"
	"hospadmin/internal/domain/workitem"
	"hospadmin/internal/transport/http/api"
	"hospadmin/internal/transport/http/middleware"
	"hospadmin/internal/transport/http/shared"
)

type Handler struct {
	Service  *workitem.Service
	Notifier *notifications.Service
	Audit    *audit.Service
}

func NewHandler(service *workitem.Service, notifier *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/work-items", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{itemID}", h.handleGet)
		r.Delete("/{itemID}", h.handleDelete)
		r.Get("/{itemID}/history", h.handleHistory)
		r.Get("/{itemID}/transitions", h.handleAllowedTransitions)
		r.Post("/{itemID}/transition", h.handleTransition)
	})
}

type createPayload struct {
	Title      string     `json:"title"`
	Details    string     `json:"details"`
	AssigneeID string     `json:"assigneeId"`
	DutyID     string     `json:"dutyId"`
	Deadline   *time.Time `json:"deadline"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	items, err := h.Service.List(r.Context(), r.URL.Query().Get("assignee"), r.URL.Query().Get("state"), limit, offset)
	if err != nil {
		failWorkItem(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		failWorkItem(w, r, err)
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	item, err := h.Service.Create(r.Context(), workitem.WorkItem{
		Title:      payload.Title,
		Details:    payload.Details,
		AssignerID: actor.EmployeeID,
		AssigneeID: payload.AssigneeID,
		DutyID:     payload.DutyID,
		Deadline:   payload.Deadline,
	})
	if err != nil {
		failWorkItem(w, r, err)
		return
	}

	if item.AssigneeID != "" {
		h.Notifier.Notify(r.Context(), item.AssigneeID, notifications.TypeWorkItemAssigned,
			"New work item assigned", "You have been assigned: "+item.Title)
	}
	h.recordAudit(r, actor, "workitem.create", item.ID, nil, item)
	api.Created(w, item, middleware.GetRequestID(r.Context()))
}

type transitionPayload struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload transitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Target == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "target state is required", middleware.GetRequestID(r.Context()))
		return
	}

	itemID := chi.URLParam(r, "itemID")
	before, err := h.Service.Get(r.Context(), itemID)
	if err != nil {
		failWorkItem(w, r, err)
		return
	}

	record, err := h.Service.MoveTo(r.Context(), itemID, payload.Target, actor.EmployeeID, payload.Reason, payload.Note)
	if err != nil {
		failWorkItem(w, r, err)
		return
	}

	if before.AssigneeID != "" && before.AssigneeID != actor.EmployeeID {
		h.Notifier.Notify(r.Context(), before.AssigneeID, notifications.TypeWorkItemTransition,
			"Work item updated", before.Title+" moved to "+record.CurrentState)
	}
	h.recordAudit(r, actor, "workitem.transition", itemID,
		map[string]string{"state": before.State},
		map[string]string{"state": record.CurrentState})
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.StateRecord(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		failWorkItem(w, r, err)
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		failWorkItem(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"state":    item.State,
		"targets":  workitem.AllowedTargets(item.State),
		"terminal": workitem.IsTerminal(item.State),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok || !actor.IsAdmin() {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if err := h.Service.Delete(r.Context(), itemID); err != nil {
		failWorkItem(w, r, err)
		return
	}
	h.recordAudit(r, actor, "workitem.delete", itemID, nil, nil)
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, actor auth.Actor, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(r.Context(), actor.UserID, action, "work_item", entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
}

func parsePage(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func failWorkItem(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var transitionErr *workitem.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		api.FailWithDetails(w, http.StatusConflict, "illegal_transition", transitionErr.Error(), map[string]any{
			"from":    transitionErr.From,
			"to":      transitionErr.To,
			"allowed": workitem.AllowedTargets(transitionErr.From),
		}, requestID)
	case errors.Is(err, workitem.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "work_item_not_found", err.Error(), requestID)
	case errors.Is(err, workitem.ErrUnknownState):
		api.Fail(w, http.StatusBadRequest, "unknown_state", err.Error(), requestID)
	case errors.Is(err, workitem.ErrTitleRequired):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "work_item_operation_failed", "work item operation failed", requestID)
	}
}
