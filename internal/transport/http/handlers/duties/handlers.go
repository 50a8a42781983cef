package dutieshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/domain/duties"
	"hospadmin/internal/transport/http/api"
	"hospadmin/internal/transport/http/middleware"
)

type Handler struct {
	Service *duties.Service
}

func NewHandler(service *duties.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/duties", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{dutyID}", h.handleGet)
		r.Put("/{dutyID}", h.handleUpdate)
		r.Delete("/{dutyID}", h.handleDelete)
		r.Post("/{dutyID}/assignments", h.handleAssign)
		r.Delete("/{dutyID}/assignments/{employeeID}", h.handleUnassign)
	})
	r.Get("/employees/{employeeID}/duties", h.handleListAssigned)
}

type dutyPayload struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	DefaultDifficulty int    `json:"defaultDifficulty"`
	Active            *bool  `json:"active,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListActive(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "duty_list_failed", "failed to list duties", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	duty, err := h.Service.Get(r.Context(), chi.URLParam(r, "dutyID"))
	if err != nil {
		failDuty(w, r, err)
		return
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload dutyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	duty, err := h.Service.Create(r.Context(), duties.RoutineDuty{
		Name:              payload.Name,
		Description:       payload.Description,
		DefaultDifficulty: payload.DefaultDifficulty,
	})
	if err != nil {
		failDuty(w, r, err)
		return
	}
	api.Created(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload dutyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "dutyID")
	current, err := h.Service.Get(r.Context(), id)
	if err != nil {
		failDuty(w, r, err)
		return
	}
	active := current.Active
	if payload.Active != nil {
		active = *payload.Active
	}

	duty, err := h.Service.Update(r.Context(), duties.RoutineDuty{
		ID:                id,
		Name:              payload.Name,
		Description:       payload.Description,
		DefaultDifficulty: payload.DefaultDifficulty,
		Active:            active,
	})
	if err != nil {
		failDuty(w, r, err)
		return
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SoftDelete(r.Context(), chi.URLParam(r, "dutyID")); err != nil {
		failDuty(w, r, err)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee id is required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Assign(r.Context(), chi.URLParam(r, "dutyID"), payload.EmployeeID); err != nil {
		failDuty(w, r, err)
		return
	}
	api.Success(w, map[string]any{"assigned": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Unassign(r.Context(), chi.URLParam(r, "dutyID"), chi.URLParam(r, "employeeID")); err != nil {
		failDuty(w, r, err)
		return
	}
	api.Success(w, map[string]any{"unassigned": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAssigned(w http.ResponseWriter, r *http.Request) {
	assigned, err := h.Service.ListAssigned(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "duty_list_failed", "failed to list assigned duties", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assigned, middleware.GetRequestID(r.Context()))
}

func failDuty(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, duties.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "duty_not_found", err.Error(), requestID)
	case errors.Is(err, duties.ErrNameRequired), errors.Is(err, duties.ErrInvalidDifficulty):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "duty_operation_failed", "duty operation failed", requestID)
	}
}
