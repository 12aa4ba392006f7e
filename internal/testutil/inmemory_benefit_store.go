package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/domain/benefit"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
)

// InMemoryBenefitStore implements benefit.Repository
type InMemoryBenefitStore struct {
	*InMemoryStore[*benefit.Benefit]
}

func NewInMemoryBenefitStore() *InMemoryBenefitStore {
	return &InMemoryBenefitStore{
		InMemoryStore: NewInMemoryStore[*benefit.Benefit](),
	}
}

func (s *InMemoryBenefitStore) Create(ctx context.Context, b *benefit.Benefit) error {
	if b == nil {
		return ierr.NewError("benefit cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, b.ID, b); err != nil {
		return ierr.WithError(err).
			WithHint("Benefit already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryBenefitStore) Get(ctx context.Context, id string) (*benefit.Benefit, error) {
	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("benefit not found").
			WithHintf("Benefit %s was not found", id).
			WithReportableDetails(map[string]any{"benefit_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return b, nil
}

func (s *InMemoryBenefitStore) Update(ctx context.Context, b *benefit.Benefit) error {
	if err := s.InMemoryStore.Update(ctx, b.ID, b); err != nil {
		return ierr.WithError(err).
			WithReportableDetails(map[string]any{"benefit_id": b.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryBenefitStore) ListByCustomer(ctx context.Context, customerID string) ([]*benefit.Benefit, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, b *benefit.Benefit, _ interface{}) bool {
		return b.CustomerID == customerID && b.Status == types.StatusActive
	}, func(i, j *benefit.Benefit) bool {
		return i.ID < j.ID
	})
}

func (s *InMemoryBenefitStore) IncrementRedemptions(ctx context.Context, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	b.TotalRedemptions++
	if b.RemainingCredits != nil {
		remaining := *b.RemainingCredits - 1
		if remaining < 0 {
			return ierr.NewError("package credits exhausted").
				WithReportableDetails(map[string]any{"benefit_id": id}).
				Mark(ierr.ErrBusinessRule)
		}
		b.RemainingCredits = &remaining
	}
	return s.InMemoryStore.Update(ctx, id, b)
}

var _ benefit.Repository = (*InMemoryBenefitStore)(nil)
