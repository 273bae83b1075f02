package mysql

import (
	"context"

	offerDomain "github.com/uzochukwuV/lendcore/internal/domain/offer"

	"gorm.io/gorm"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id uint64) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

// List pages in id order (keyset). The accepted-types column holds the JSON
// the serializer writes, so the kind filter is a substring match on the
// serialized tag; kinds are a closed set, so no escaping concerns.
func (r *OfferRepository) List(ctx context.Context, f offerDomain.ListFilter, p offerDomain.Page) ([]offerDomain.Offer, error) {
	q := r.db.WithContext(ctx).Model(&offerDomain.Offer{})
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.Lender != "" {
		q = q.Where("lender = ?", f.Lender)
	}
	if f.AssetKind != "" {
		q = q.Where("accepted_asset_types LIKE ?", `%"kind":"`+string(f.AssetKind)+`"%`)
	}
	if p.AfterID > 0 {
		q = q.Where("id > ?", p.AfterID)
	}
	var out []offerDomain.Offer
	res := q.Order("id ASC").Limit(p.Limit).Find(&out)
	return out, res.Error
}

func (r *OfferRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&offerDomain.Offer{}).Where("is_active = ?", true).Count(&n)
	return n, res.Error
}
