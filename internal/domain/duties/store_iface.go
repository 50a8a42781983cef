package duties

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, duty RoutineDuty) (string, error)
	Get(ctx context.Context, id string) (RoutineDuty, error)
	ListActive(ctx context.Context) ([]RoutineDuty, error)
	Update(ctx context.Context, duty RoutineDuty) error
	SoftDelete(ctx context.Context, id string) error
	Assign(ctx context.Context, dutyID, employeeID string) error
	Unassign(ctx context.Context, dutyID, employeeID string) error
	ListAssigned(ctx context.Context, employeeID string) ([]AssignedDuty, error)
}
