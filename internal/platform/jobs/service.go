package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"hospadmin/internal/domain/notifications"
	"hospadmin/internal/domain/workitem"
	"hospadmin/internal/platform/config"
)

const (
	JobOverdueSweep = "overdue_sweep"
	JobAutoClose    = "auto_close"
)

// sweepStates are the in-flight states a deadline can overtake.
var sweepStates = []string{workitem.StateAssigned, workitem.StateAccepted, workitem.StateInProgress}

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	WorkItems *workitem.Service
	Notify    *notifications.Service
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, workItems *workitem.Service, notify *notifications.Service) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		WorkItems: workItems,
		Notify:    notify,
		queue:     make(chan job, 64),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.OverdueSweepEvery > 0 {
		go s.schedule(ctx, s.Cfg.OverdueSweepEvery, JobOverdueSweep, s.runOverdueSweep)
	}
	if s.Cfg.AutoCloseAfter > 0 && s.Cfg.OverdueSweepEvery > 0 {
		go s.schedule(ctx, s.Cfg.OverdueSweepEvery, JobAutoClose, s.runAutoClose)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := uuid.NewString()
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, status)
    VALUES ($1,$2,$3)
  `, runID, j.Type, "running"); err != nil {
		slog.Warn("job run insert failed", "err", err)
		runID = ""
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// runOverdueSweep writes overdue onto every in-flight item whose deadline
// has passed. This is the only place overdue is ever entered; the state
// machine itself only governs how an item leaves it.
func (s *Service) runOverdueSweep(ctx context.Context) (any, error) {
	candidates, err := s.WorkItems.OverdueCandidates(ctx, sweepStates, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	marked := 0
	for _, item := range candidates {
		if err := s.WorkItems.MarkOverdue(ctx, item.ID, "deadline passed"); err != nil {
			slog.Warn("overdue mark failed", "workItemId", item.ID, "err", err)
			continue
		}
		marked++
		if err := s.Notify.Notify(ctx, item.AssigneeID, notifications.TypeWorkItemOverdue,
			"Work item overdue", fmt.Sprintf("%q passed its deadline.", item.Title)); err != nil {
			slog.Warn("overdue notification failed", "workItemId", item.ID, "err", err)
		}
	}
	return map[string]any{"candidates": len(candidates), "marked": marked}, nil
}

// runAutoClose completes items that have sat in pending_approval past the
// configured window, on behalf of approvers who never acted.
func (s *Service) runAutoClose(ctx context.Context) (any, error) {
	cutoff := time.Now().UTC().Add(-s.Cfg.AutoCloseAfter)
	stale, err := s.WorkItems.StalePendingApproval(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	closed := 0
	for _, item := range stale {
		if _, err := s.WorkItems.MoveTo(ctx, item.ID, workitem.StateCompleted, workitem.SystemActorID,
			"auto-closed after approval window", ""); err != nil {
			slog.Warn("auto-close failed", "workItemId", item.ID, "err", err)
			continue
		}
		closed++
		if err := s.Notify.Notify(ctx, item.AssigneeID, notifications.TypeWorkItemTransition,
			"Work item completed", fmt.Sprintf("%q was auto-closed after the approval window elapsed.", item.Title)); err != nil {
			slog.Warn("auto-close notification failed", "workItemId", item.ID, "err", err)
		}
	}
	return map[string]any{"stale": len(stale), "closed": closed}, nil
}
