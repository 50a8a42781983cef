package workitem

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Create registers a work item in state new. When an assignee is already
// known the item is moved straight to assigned so the history records who
// handed it out.
func (s *Service) Create(ctx context.Context, item WorkItem) (WorkItem, error) {
	if strings.TrimSpace(item.Title) == "" {
		return WorkItem{}, ErrTitleRequired
	}
	item.State = StateNew
	id, err := s.store.InsertWorkItem(ctx, item)
	if err != nil {
		return WorkItem{}, err
	}

	if item.AssigneeID != "" {
		entry := TransitionEntry{
			FromState: StateNew,
			ToState:   StateAssigned,
			ActorID:   item.AssignerID,
			At:        time.Now().UTC(),
			Reason:    "assigned on creation",
		}
		if err := s.store.ApplyTransition(ctx, id, entry); err != nil {
			return WorkItem{}, err
		}
	}

	return s.store.GetWorkItem(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (WorkItem, error) {
	return s.store.GetWorkItem(ctx, id)
}

func (s *Service) List(ctx context.Context, assigneeID, state string, limit, offset int) ([]WorkItem, error) {
	if state != "" && !KnownState(state) {
		return nil, ErrUnknownState
	}
	return s.store.ListWorkItems(ctx, assigneeID, state, limit, offset)
}

func (s *Service) StateRecord(ctx context.Context, workItemID string) (TaskStateRecord, error) {
	return s.store.GetStateRecord(ctx, workItemID)
}

// MoveTo applies one table-checked transition and persists it.
func (s *Service) MoveTo(ctx context.Context, workItemID, target, actorID, reason, note string) (TaskStateRecord, error) {
	record, err := s.store.GetStateRecord(ctx, workItemID)
	if err != nil {
		return TaskStateRecord{}, err
	}

	next, err := Transition(record, target, actorID, reason, note, time.Now().UTC())
	if err != nil {
		return TaskStateRecord{}, err
	}

	entry := next.History[len(next.History)-1]
	if err := s.store.ApplyTransition(ctx, workItemID, entry); err != nil {
		return TaskStateRecord{}, err
	}
	return next, nil
}

// MarkOverdue is the deadline sweeper's entry point. Overdue is written
// outside the transition table: the table only governs how an item leaves
// overdue, not how it gets there.
func (s *Service) MarkOverdue(ctx context.Context, workItemID, reason string) error {
	record, err := s.store.GetStateRecord(ctx, workItemID)
	if err != nil {
		return err
	}
	if IsTerminal(record.CurrentState) || record.CurrentState == StateOverdue {
		return nil
	}

	entry := TransitionEntry{
		FromState: record.CurrentState,
		ToState:   StateOverdue,
		ActorID:   SystemActorID,
		At:        time.Now().UTC(),
		Reason:    reason,
	}
	return s.store.ApplyTransition(ctx, workItemID, entry)
}

// OverdueCandidates lists in-flight items whose deadline passed before
// the given instant.
func (s *Service) OverdueCandidates(ctx context.Context, states []string, before time.Time) ([]WorkItem, error) {
	return s.store.ListOverdueCandidates(ctx, states, before)
}

// StalePendingApproval lists items waiting for approval since before the
// cutoff.
func (s *Service) StalePendingApproval(ctx context.Context, olderThan time.Time) ([]WorkItem, error) {
	return s.store.ListStalePendingApproval(ctx, olderThan)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.SoftDeleteWorkItem(ctx, id)
}
