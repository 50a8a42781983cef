package criteriahandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/domain/audit"
	"hospadmin/internal/domain/criteria"
	"hospadmin/internal/transport/http/api"
	"hospadmin/internal/transport/http/middleware"
	"hospadmin/internal/transport/http/shared"
)

type Handler struct {
	Service *criteria.Service
	Audit   *audit.Service
}

func NewHandler(service *criteria.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/criteria", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{criterionID}", h.handleGet)
		r.Put("/{criterionID}", h.handleUpdate)
		r.Delete("/{criterionID}", h.handleDelete)
	})
}

type criterionPayload struct {
	Name          string  `json:"name"`
	Direction     string  `json:"direction"`
	Unit          string  `json:"unit"`
	ValueMin      float64 `json:"valueMin"`
	ValueMax      float64 `json:"valueMax"`
	DefaultWeight float64 `json:"defaultWeight"`
	Active        *bool   `json:"active,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Service.ListActive(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criteria_list_failed", "failed to list criteria", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, defs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	def, err := h.Service.Get(r.Context(), chi.URLParam(r, "criterionID"))
	if errors.Is(err, criteria.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "criterion_not_found", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_get_failed", "failed to load criterion", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, def, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	def, err := h.Service.Create(r.Context(), criteria.CriterionDefinition{
		Name:          payload.Name,
		Direction:     payload.Direction,
		Unit:          payload.Unit,
		ValueMin:      payload.ValueMin,
		ValueMax:      payload.ValueMax,
		DefaultWeight: payload.DefaultWeight,
	})
	if err != nil {
		failValidation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "criteria.create", "criterion", def.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, def); err != nil {
		slog.Warn("audit criteria.create failed", "err", err)
	}
	api.Created(w, def, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "criterionID")
	before, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, criteria.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "criterion_not_found", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_update_failed", "failed to load criterion", middleware.GetRequestID(r.Context()))
		return
	}

	active := before.Active
	if payload.Active != nil {
		active = *payload.Active
	}
	def, err := h.Service.Update(r.Context(), criteria.CriterionDefinition{
		ID:            id,
		Name:          payload.Name,
		Direction:     payload.Direction,
		Unit:          payload.Unit,
		ValueMin:      payload.ValueMin,
		ValueMax:      payload.ValueMax,
		DefaultWeight: payload.DefaultWeight,
		Active:        active,
	})
	if errors.Is(err, criteria.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "criterion_not_found", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		failValidation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "criteria.update", "criterion", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, def); err != nil {
		slog.Warn("audit criteria.update failed", "err", err)
	}
	api.Success(w, def, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "criterionID")
	if err := h.Service.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, criteria.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "criterion_not_found", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "criterion_delete_failed", "failed to delete criterion", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "criteria.delete", "criterion", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit criteria.delete failed", "err", err)
	}
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func failValidation(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, criteria.ErrInvalidRange),
		errors.Is(err, criteria.ErrNegativeWeight),
		errors.Is(err, criteria.ErrInvalidDirection),
		errors.Is(err, criteria.ErrNameRequired):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "criterion_save_failed", "failed to save criterion", middleware.GetRequestID(r.Context()))
	}
}
