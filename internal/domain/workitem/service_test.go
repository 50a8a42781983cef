package workitem

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeItemStore struct {
	items   map[string]*WorkItem
	history map[string][]TransitionEntry
	nextID  int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{
		items:   map[string]*WorkItem{},
		history: map[string][]TransitionEntry{},
	}
}

func (f *fakeItemStore) InsertWorkItem(_ context.Context, item WorkItem) (string, error) {
	f.nextID++
	item.ID = fmt.Sprintf("w%d", f.nextID)
	item.CreatedAt = time.Now().UTC()
	f.items[item.ID] = &item
	return item.ID, nil
}

func (f *fakeItemStore) GetWorkItem(_ context.Context, id string) (WorkItem, error) {
	item, ok := f.items[id]
	if !ok {
		return WorkItem{}, ErrNotFound
	}
	return *item, nil
}

func (f *fakeItemStore) ListWorkItems(_ context.Context, _, _ string, _, _ int) ([]WorkItem, error) {
	return nil, nil
}

func (f *fakeItemStore) GetStateRecord(_ context.Context, workItemID string) (TaskStateRecord, error) {
	item, ok := f.items[workItemID]
	if !ok {
		return TaskStateRecord{}, ErrNotFound
	}
	return TaskStateRecord{
		WorkItemID:   workItemID,
		CurrentState: item.State,
		History:      append([]TransitionEntry{}, f.history[workItemID]...),
	}, nil
}

func (f *fakeItemStore) ApplyTransition(_ context.Context, workItemID string, entry TransitionEntry) error {
	item, ok := f.items[workItemID]
	if !ok {
		return ErrNotFound
	}
	item.State = entry.ToState
	f.history[workItemID] = append(f.history[workItemID], entry)
	return nil
}

func (f *fakeItemStore) ListOverdueCandidates(_ context.Context, states []string, before time.Time) ([]WorkItem, error) {
	var out []WorkItem
	for _, item := range f.items {
		if item.Deadline == nil || !item.Deadline.Before(before) {
			continue
		}
		for _, state := range states {
			if item.State == state {
				out = append(out, *item)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeItemStore) ListStalePendingApproval(_ context.Context, _ time.Time) ([]WorkItem, error) {
	return nil, nil
}

func (f *fakeItemStore) SoftDeleteWorkItem(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := NewService(newFakeItemStore())
	if _, err := svc.Create(context.Background(), WorkItem{Title: "  "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestCreateWithoutAssigneeStaysNew(t *testing.T) {
	svc := NewService(newFakeItemStore())
	item, err := svc.Create(context.Background(), WorkItem{Title: "Restock ward 3"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.State != StateNew {
		t.Fatalf("expected new, got %s", item.State)
	}

	record, err := svc.StateRecord(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("state record: %v", err)
	}
	if len(record.History) != 0 {
		t.Fatalf("expected empty history, got %+v", record.History)
	}
}

func TestCreateWithAssigneeRecordsAssignment(t *testing.T) {
	svc := NewService(newFakeItemStore())
	item, err := svc.Create(context.Background(), WorkItem{
		Title:      "Night audit",
		AssignerID: "mgr-1",
		AssigneeID: "emp-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.State != StateAssigned {
		t.Fatalf("expected assigned, got %s", item.State)
	}

	record, _ := svc.StateRecord(context.Background(), item.ID)
	if len(record.History) != 1 || record.History[0].ActorID != "mgr-1" {
		t.Fatalf("assignment not in history: %+v", record.History)
	}
}

func TestMoveToPersistsEntry(t *testing.T) {
	svc := NewService(newFakeItemStore())
	item, _ := svc.Create(context.Background(), WorkItem{Title: "Audit", AssignerID: "mgr-1", AssigneeID: "emp-1"})

	record, err := svc.MoveTo(context.Background(), item.ID, StateAccepted, "emp-1", "taking it", "")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if record.CurrentState != StateAccepted {
		t.Fatalf("expected accepted, got %s", record.CurrentState)
	}

	stored, _ := svc.Get(context.Background(), item.ID)
	if stored.State != StateAccepted {
		t.Fatalf("state not persisted: %s", stored.State)
	}
}

func TestMoveToIllegalLeavesStateUntouched(t *testing.T) {
	svc := NewService(newFakeItemStore())
	item, _ := svc.Create(context.Background(), WorkItem{Title: "Audit", AssignerID: "mgr-1", AssigneeID: "emp-1"})

	_, err := svc.MoveTo(context.Background(), item.ID, StateCompleted, "emp-1", "", "")
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}

	stored, _ := svc.Get(context.Background(), item.ID)
	if stored.State != StateAssigned {
		t.Fatalf("state changed on rejected transition: %s", stored.State)
	}
	record, _ := svc.StateRecord(context.Background(), item.ID)
	if len(record.History) != 1 {
		t.Fatalf("history grew on rejected transition: %+v", record.History)
	}
}

func TestListRejectsUnknownStateFilter(t *testing.T) {
	svc := NewService(newFakeItemStore())
	if _, err := svc.List(context.Background(), "", "archived", 10, 0); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestMarkOverdue(t *testing.T) {
	store := newFakeItemStore()
	svc := NewService(store)
	item, _ := svc.Create(context.Background(), WorkItem{Title: "Audit", AssignerID: "mgr-1", AssigneeID: "emp-1"})

	if err := svc.MarkOverdue(context.Background(), item.ID, "deadline passed"); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	record, _ := svc.StateRecord(context.Background(), item.ID)
	if record.CurrentState != StateOverdue {
		t.Fatalf("expected overdue, got %s", record.CurrentState)
	}
	last := record.History[len(record.History)-1]
	if last.ActorID != SystemActorID {
		t.Fatalf("expected system actor, got %s", last.ActorID)
	}

	// Idempotent on already overdue items.
	if err := svc.MarkOverdue(context.Background(), item.ID, "again"); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	record, _ = svc.StateRecord(context.Background(), item.ID)
	if len(record.History) != 2 {
		t.Fatalf("duplicate overdue entry written: %+v", record.History)
	}
}

func TestMarkOverdueSkipsTerminal(t *testing.T) {
	store := newFakeItemStore()
	svc := NewService(store)
	item, _ := svc.Create(context.Background(), WorkItem{Title: "Audit", AssignerID: "mgr-1", AssigneeID: "emp-1"})
	store.items[item.ID].State = StateCompleted

	if err := svc.MarkOverdue(context.Background(), item.ID, "deadline passed"); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	stored, _ := svc.Get(context.Background(), item.ID)
	if stored.State != StateCompleted {
		t.Fatalf("terminal item moved: %s", stored.State)
	}
}

func TestOverdueCandidatesFilter(t *testing.T) {
	store := newFakeItemStore()
	svc := NewService(store)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	late, _ := svc.Create(context.Background(), WorkItem{Title: "Late", AssignerID: "m", AssigneeID: "e", Deadline: &past})
	svc.Create(context.Background(), WorkItem{Title: "On time", AssignerID: "m", AssigneeID: "e", Deadline: &future})

	candidates, err := svc.OverdueCandidates(context.Background(), []string{StateAssigned}, time.Now().UTC())
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != late.ID {
		t.Fatalf("expected only the late item, got %+v", candidates)
	}
}
