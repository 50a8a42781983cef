package workitem

import (
	"context"
	"time"
)

type StoreAPI interface {
	InsertWorkItem(ctx context.Context, item WorkItem) (string, error)
	GetWorkItem(ctx context.Context, id string) (WorkItem, error)
	ListWorkItems(ctx context.Context, assigneeID, state string, limit, offset int) ([]WorkItem, error)
	GetStateRecord(ctx context.Context, workItemID string) (TaskStateRecord, error)
	ApplyTransition(ctx context.Context, workItemID string, entry TransitionEntry) error
	ListOverdueCandidates(ctx context.Context, states []string, before time.Time) ([]WorkItem, error)
	ListStalePendingApproval(ctx context.Context, olderThan time.Time) ([]WorkItem, error)
	SoftDeleteWorkItem(ctx context.Context, id string) error
}
