package duties

import (
	"context"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, duty RoutineDuty) (RoutineDuty, error) {
	if err := validate(duty); err != nil {
		return RoutineDuty{}, err
	}
	duty.Active = true
	id, err := s.store.Insert(ctx, duty)
	if err != nil {
		return RoutineDuty{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (RoutineDuty, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]RoutineDuty, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) Update(ctx context.Context, duty RoutineDuty) (RoutineDuty, error) {
	if err := validate(duty); err != nil {
		return RoutineDuty{}, err
	}
	if err := s.store.Update(ctx, duty); err != nil {
		return RoutineDuty{}, err
	}
	return s.store.Get(ctx, duty.ID)
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}

func (s *Service) Assign(ctx context.Context, dutyID, employeeID string) error {
	if _, err := s.store.Get(ctx, dutyID); err != nil {
		return err
	}
	return s.store.Assign(ctx, dutyID, employeeID)
}

func (s *Service) Unassign(ctx context.Context, dutyID, employeeID string) error {
	return s.store.Unassign(ctx, dutyID, employeeID)
}

func (s *Service) ListAssigned(ctx context.Context, employeeID string) ([]AssignedDuty, error) {
	return s.store.ListAssigned(ctx, employeeID)
}

func validate(duty RoutineDuty) error {
	if strings.TrimSpace(duty.Name) == "" {
		return ErrNameRequired
	}
	if duty.DefaultDifficulty < 1 || duty.DefaultDifficulty > 10 {
		return ErrInvalidDifficulty
	}
	return nil
}
