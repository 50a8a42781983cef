package criteria

import "context"

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, def CriterionDefinition) (CriterionDefinition, error) {
	if err := ValidateDefinition(def); err != nil {
		return CriterionDefinition{}, err
	}
	def.Active = true
	id, err := s.store.Insert(ctx, def)
	if err != nil {
		return CriterionDefinition{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (CriterionDefinition, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]CriterionDefinition, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) Update(ctx context.Context, def CriterionDefinition) (CriterionDefinition, error) {
	if err := ValidateDefinition(def); err != nil {
		return CriterionDefinition{}, err
	}
	if err := s.store.Update(ctx, def); err != nil {
		return CriterionDefinition{}, err
	}
	return s.store.Get(ctx, def.ID)
}

// SoftDelete marks a criterion inactive. Historical score snapshots keep
// their copied name and bounds, so deletion never cascades.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}
