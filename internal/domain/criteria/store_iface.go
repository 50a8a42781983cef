package criteria

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, def CriterionDefinition) (string, error)
	Get(ctx context.Context, id string) (CriterionDefinition, error)
	ListActive(ctx context.Context) ([]CriterionDefinition, error)
	ListByIDs(ctx context.Context, ids []string) ([]CriterionDefinition, error)
	Update(ctx context.Context, def CriterionDefinition) error
	SoftDelete(ctx context.Context, id string) error
}
