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

func (h *Handler) handleGetDuty(w http.ResponseWriter, r *http.Request) {
	duty, err := h.Service.GetDuty(r.Context(), chi.URLParam(r, "dutyEvalID"))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Entries    []evaluation.SubmittedScore `json:"entries"`
		Difficulty *int                        `json:"difficulty,omitempty"`
		Note       *string                     `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id := chi.URLParam(r, "dutyEvalID")
	duty, err := h.Service.Score(r.Context(), id, payload.Entries, payload.Difficulty, payload.Note, forceRequested(r, actor))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.score", "duty_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, duty); err != nil {
		slog.Warn("audit evaluation.score failed", "err", err)
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClamp(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		CriterionID string `json:"criterionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	duty, err := h.Service.ClampScore(r.Context(), chi.URLParam(r, "dutyEvalID"), payload.CriterionID, forceRequested(r, actor))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDuty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "dutyEvalID")
	if err := h.Service.DeleteDuty(r.Context(), id, forceRequested(r, actor)); err != nil {
		failEvaluation(w, r, err)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.duty_delete", "duty_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit evaluation.duty_delete failed", "err", err)
	}
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreviewReconcile(w http.ResponseWriter, r *http.Request) {
	preview, err := h.Service.PreviewReconcile(r.Context(), chi.URLParam(r, "dutyEvalID"))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}
	api.Success(w, preview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "dutyEvalID")
	before, err := h.Service.GetDuty(r.Context(), id)
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	duty, err := h.Service.ReconcileDuty(r.Context(), id, forceRequested(r, actor))
	if err != nil {
		failEvaluation(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "evaluation.reconcile", "duty_evaluation", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, duty); err != nil {
		slog.Warn("audit evaluation.reconcile failed", "err", err)
	}
	api.Success(w, duty, middleware.GetRequestID(r.Context()))
}
