package offer

import (
	"context"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

// ListFilter narrows a listing; zero values mean "no constraint". AssetKind
// matches offers whose accepted list contains that kind.
type ListFilter struct {
	AssetKind  asset.Kind
	Lender     string
	ActiveOnly bool
}

// Page is keyset pagination: offers with id > AfterID, ascending, Limit rows.
type Page struct {
	Limit   int
	AfterID uint64
}

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id uint64) (*Offer, error)
	Save(ctx context.Context, o *Offer) error
	List(ctx context.Context, f ListFilter, p Page) ([]Offer, error)
	CountActive(ctx context.Context) (int64, error)
}
