package offermock

import (
	"context"
	"errors"

	domain "github.com/uzochukwuV/lendcore/internal/domain/offer"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("offermock: method not implemented")

// Repo is a function-backed mock that satisfies offer.Repository.
type Repo struct {
	CreateFn      func(ctx context.Context, o *domain.Offer) error
	GetByIDFn     func(ctx context.Context, id uint64) (*domain.Offer, error)
	SaveFn        func(ctx context.Context, o *domain.Offer) error
	ListFn        func(ctx context.Context, f domain.ListFilter, p domain.Page) ([]domain.Offer, error)
	CountActiveFn func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, o *domain.Offer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Offer, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, o *domain.Offer) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, o)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter, p domain.Page) ([]domain.Offer, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f, p)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountActive(ctx context.Context) (int64, error) {
	if m.CountActiveFn != nil {
		return m.CountActiveFn(ctx)
	}
	return 0, errUnimplemented
}
