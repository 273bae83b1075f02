package offer

import (
	"context"
	"errors"
	"math"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	"github.com/uzochukwuV/lendcore/internal/domain/offer"
	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"

	"gorm.io/gorm"
)

const (
	// MaxLoanAmountCapUSD bounds any single offer.
	MaxLoanAmountCapUSD = 10_000_000
	// MaxDurationDays is five years.
	MaxDurationDays = 1825

	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Usecase struct {
	repo    offer.Repository
	breaker *breaker.Breaker
}

func NewUsecase(r offer.Repository, b *breaker.Breaker) *Usecase {
	return &Usecase{repo: r, breaker: b}
}

type CreateInput struct {
	MaxLoanAmountUSD     float64
	MinVerificationScore float64
	MaxLTVRatio          float64
	InterestRate         float64
	MaxDurationDays      int
	AcceptedAssetTypes   []asset.Type
	PaymentMethod        asset.PaymentMethod
}

// validate applies the term checks in a fixed order and stops at the first
// violation.
func validate(in CreateInput) error {
	switch {
	case in.MaxLoanAmountUSD <= 0:
		return fault.New(fault.KindInvalidInput, "loan amount must be positive")
	case math.IsNaN(in.MaxLoanAmountUSD) || math.IsInf(in.MaxLoanAmountUSD, 0):
		return fault.New(fault.KindInvalidInput, "loan amount must be a valid number")
	case in.MaxLoanAmountUSD > MaxLoanAmountCapUSD:
		return fault.New(fault.KindInvalidInput, "loan amount exceeds maximum limit")
	case in.InterestRate < 0 || in.InterestRate > 100:
		return fault.New(fault.KindInvalidInput, "interest rate must be between 0-100%")
	case in.MaxLTVRatio <= 0 || in.MaxLTVRatio > 0.8:
		return fault.New(fault.KindInvalidInput, "ltv ratio must be between 0-80%")
	case in.MinVerificationScore < 0.5 || in.MinVerificationScore > 1.0:
		return fault.New(fault.KindInvalidInput, "minimum verification score must be between 0.5-1.0")
	case in.MaxDurationDays < 1 || in.MaxDurationDays > MaxDurationDays:
		return fault.New(fault.KindInvalidInput, "duration must be between 1 day and 5 years")
	case len(in.AcceptedAssetTypes) == 0:
		return fault.New(fault.KindInvalidInput, "must accept at least one asset type")
	}
	for _, t := range in.AcceptedAssetTypes {
		if !t.Kind.Valid() {
			return fault.Newf(fault.KindInvalidInput, "unknown asset kind %q", t.Kind)
		}
	}
	if !in.PaymentMethod.Valid() {
		return fault.Newf(fault.KindInvalidInput, "unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

func (u *Usecase) Create(ctx context.Context, lender string, in CreateInput) (uint64, error) {
	if err := u.breaker.Ensure(ctx); err != nil {
		return 0, err
	}
	if err := validate(in); err != nil {
		return 0, err
	}

	o := &offer.Offer{
		Lender:               lender,
		MaxLoanAmountUSD:     in.MaxLoanAmountUSD,
		MinVerificationScore: in.MinVerificationScore,
		MaxLTVRatio:          in.MaxLTVRatio,
		InterestRate:         in.InterestRate,
		MaxDurationDays:      in.MaxDurationDays,
		AcceptedAssetTypes:   in.AcceptedAssetTypes,
		PaymentMethod:        in.PaymentMethod,
		IsActive:             true,
	}
	if err := u.repo.Create(ctx, o); err != nil {
		return 0, fault.Newf(fault.KindUnavailable, "persist offer: %v", err)
	}
	return o.ID, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*offer.Offer, error) {
	o, err := u.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fault.Newf(fault.KindNotFound, "offer %d not found", id)
	case err != nil:
		return nil, fault.Newf(fault.KindUnavailable, "load offer: %v", err)
	}
	return o, nil
}

// List returns active offers, optionally narrowed by asset kind or lender,
// in id order with keyset pagination. The limit is clamped to MaxListLimit
// to bound response size.
func (u *Usecase) List(ctx context.Context, f offer.ListFilter, p offer.Page) ([]offer.Offer, error) {
	if f.AssetKind != "" && !f.AssetKind.Valid() {
		return nil, fault.Newf(fault.KindInvalidInput, "unknown asset kind %q", f.AssetKind)
	}
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	f.ActiveOnly = true
	out, err := u.repo.List(ctx, f, p)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "list offers: %v", err)
	}
	return out, nil
}

// Deactivate is the only mutation an offer ever sees: a logical delete.
// Terms stay frozen and the row survives for loan traceability.
func (u *Usecase) Deactivate(ctx context.Context, lender string, id uint64) error {
	if err := u.breaker.Ensure(ctx); err != nil {
		return err
	}
	o, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Lender != lender {
		return fault.New(fault.KindUnauthorized, "only the lender can deactivate an offer")
	}
	if !o.IsActive {
		return fault.Newf(fault.KindInvalidState, "offer %d is already inactive", id)
	}
	o.IsActive = false
	if err := u.repo.Save(ctx, o); err != nil {
		return fault.Newf(fault.KindUnavailable, "persist offer: %v", err)
	}
	return nil
}
