package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/domain/catalog"
	ierr "github.com/salonhq/salonhq/internal/errors"
)

// InMemoryCatalogStore implements catalog.Repository
type InMemoryCatalogStore struct {
	*InMemoryStore[*catalog.Item]
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		InMemoryStore: NewInMemoryStore[*catalog.Item](),
	}
}

func (s *InMemoryCatalogStore) Create(ctx context.Context, item *catalog.Item) error {
	if item == nil {
		return ierr.NewError("item cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, item.ID, item); err != nil {
		return ierr.WithError(err).
			WithHint("Catalog item already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCatalogStore) Get(ctx context.Context, id string) (*catalog.Item, error) {
	item, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("catalog item not found").
			WithHintf("Catalog item %s was not found", id).
			WithReportableDetails(map[string]any{"item_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

var _ catalog.Repository = (*InMemoryCatalogStore)(nil)
