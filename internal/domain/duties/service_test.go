package duties

import (
	"context"
	"errors"
	"testing"
)

type fakeDutyStore struct {
	duties      map[string]*RoutineDuty
	assignments map[string]map[string]bool
}

func newFakeDutyStore() *fakeDutyStore {
	return &fakeDutyStore{
		duties:      map[string]*RoutineDuty{},
		assignments: map[string]map[string]bool{},
	}
}

func (f *fakeDutyStore) Insert(_ context.Context, duty RoutineDuty) (string, error) {
	duty.ID = "duty-1"
	f.duties[duty.ID] = &duty
	return duty.ID, nil
}

func (f *fakeDutyStore) Get(_ context.Context, id string) (RoutineDuty, error) {
	duty, ok := f.duties[id]
	if !ok {
		return RoutineDuty{}, ErrNotFound
	}
	return *duty, nil
}

func (f *fakeDutyStore) ListActive(_ context.Context) ([]RoutineDuty, error) {
	return nil, nil
}

func (f *fakeDutyStore) Update(_ context.Context, duty RoutineDuty) error {
	stored, ok := f.duties[duty.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = duty
	return nil
}

func (f *fakeDutyStore) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.duties[id]; !ok {
		return ErrNotFound
	}
	delete(f.duties, id)
	return nil
}

func (f *fakeDutyStore) Assign(_ context.Context, dutyID, employeeID string) error {
	if f.assignments[dutyID] == nil {
		f.assignments[dutyID] = map[string]bool{}
	}
	f.assignments[dutyID][employeeID] = true
	return nil
}

func (f *fakeDutyStore) Unassign(_ context.Context, dutyID, employeeID string) error {
	delete(f.assignments[dutyID], employeeID)
	return nil
}

func (f *fakeDutyStore) ListAssigned(_ context.Context, employeeID string) ([]AssignedDuty, error) {
	var out []AssignedDuty
	for dutyID, employees := range f.assignments {
		if employees[employeeID] {
			duty := f.duties[dutyID]
			out = append(out, AssignedDuty{DutyID: dutyID, Name: duty.Name, DefaultDifficulty: duty.DefaultDifficulty})
		}
	}
	return out, nil
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newFakeDutyStore())

	if _, err := svc.Create(context.Background(), RoutineDuty{Name: " ", DefaultDifficulty: 5}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create(context.Background(), RoutineDuty{Name: "Ward rounds", DefaultDifficulty: 0}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	if _, err := svc.Create(context.Background(), RoutineDuty{Name: "Ward rounds", DefaultDifficulty: 11}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}

	duty, err := svc.Create(context.Background(), RoutineDuty{Name: "Ward rounds", DefaultDifficulty: 8})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !duty.Active {
		t.Fatal("new duty should be active")
	}
}

func TestAssignRequiresExistingDuty(t *testing.T) {
	svc := NewService(newFakeDutyStore())
	if err := svc.Assign(context.Background(), "missing", "emp-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignAndListAssigned(t *testing.T) {
	svc := NewService(newFakeDutyStore())
	duty, _ := svc.Create(context.Background(), RoutineDuty{Name: "Ward rounds", DefaultDifficulty: 8})

	if err := svc.Assign(context.Background(), duty.ID, "emp-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	assigned, err := svc.ListAssigned(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned) != 1 || assigned[0].Name != "Ward rounds" || assigned[0].DefaultDifficulty != 8 {
		t.Fatalf("unexpected assignment list: %+v", assigned)
	}

	if err := svc.Unassign(context.Background(), duty.ID, "emp-1"); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	assigned, _ = svc.ListAssigned(context.Background(), "emp-1")
	if len(assigned) != 0 {
		t.Fatalf("assignment survived unassign: %+v", assigned)
	}
}
