package evaluationhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospadmin/internal/domain/evaluation"
	"hospadmin/internal/transport/http/api"
	"hospadmin/internal/transport/http/middleware"
	"hospadmin/internal/transport/http/shared"
)

type cyclePayload struct {
	Name      string                      `json:"name"`
	StartDate string                      `json:"startDate"`
	EndDate   string                      `json:"endDate"`
	Status    string                      `json:"status"`
	Criteria  []evaluation.CycleCriterion `json:"criteria"`
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	cycle, ok := h.decodeCycle(w, r)
	if !ok {
		return
	}

	created, err := h.Service.CreateCycle(r.Context(), cycle)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "cycle.create", "evaluation_cycle", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit cycle.create failed", "err", err)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

// handleUpdateCycle swaps in a new criterion configuration. Drift against
// duties already scored under the old one is resolved per duty through
// the reconcile endpoints, never here.
func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	cycle, ok := h.decodeCycle(w, r)
	if !ok {
		return
	}
	cycle.ID = chi.URLParam(r, "cycleID")

	before, err := h.Service.GetCycle(r.Context(), cycle.ID)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	updated, err := h.Service.UpdateCycle(r.Context(), cycle)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "cycle.update", "evaluation_cycle", cycle.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, updated); err != nil {
		slog.Warn("audit cycle.update failed", "err", err)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decodeCycle(w http.ResponseWriter, r *http.Request) (evaluation.EvaluationCycle, bool) {
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return evaluation.EvaluationCycle{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	start, okStart := v.Date("startDate", payload.StartDate)
	end, okEnd := v.Date("endDate", payload.EndDate)
	if okStart && okEnd {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return evaluation.EvaluationCycle{}, false
	}

	return evaluation.EvaluationCycle{
		Name:      payload.Name,
		StartDate: start,
		EndDate:   end,
		Status:    payload.Status,
		Criteria:  payload.Criteria,
	}, true
}
