package loan

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	"github.com/uzochukwuV/lendcore/internal/domain/loan"
	"github.com/uzochukwuV/lendcore/internal/domain/offer"
	"github.com/uzochukwuV/lendcore/internal/domain/uow"
	"github.com/uzochukwuV/lendcore/internal/risk"
	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"

	"gorm.io/gorm"
)

// SystemCaller identifies scanner-driven liquidations. It can never collide
// with a real principal (those are 32-char hex).
const SystemCaller = "system:liquidation-scanner"

// Oracle is the external valuation/ownership collaborator. Every call is a
// suspension point: state read before it must be re-checked at commit time.
type Oracle interface {
	GetAsset(ctx context.Context, assetID string) (*asset.Collateral, error)
}

// Registry transfers asset ownership after a forced sale. Idempotent retry is
// this caller's concern.
type Registry interface {
	Transfer(ctx context.Context, assetID, newOwner string) error
}

type Usecase struct {
	loans    loan.Repository
	offers   offer.Repository
	uow      uow.UnitOfWork
	oracle   Oracle
	registry Registry
	breaker  *breaker.Breaker
	now      func() time.Time
}

func NewUsecase(loans loan.Repository, offers offer.Repository, tx uow.UnitOfWork, o Oracle, reg Registry, b *breaker.Breaker) *Usecase {
	return &Usecase{
		loans:    loans,
		offers:   offers,
		uow:      tx,
		oracle:   o,
		registry: reg,
		breaker:  b,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RequestInput struct {
	OfferID      uint64
	AssetID      string
	AmountUSD    float64
	DurationDays int
}

// checkOfferTerms validates the request against one offer read. It runs twice:
// once up front to fail fast, and again inside the commit transaction because
// the offer may have been deactivated while the oracle call was in flight.
func checkOfferTerms(o *offer.Offer, in RequestInput) error {
	if !o.IsActive {
		return fault.Newf(fault.KindInvalidState, "offer %d is not active", o.ID)
	}
	if in.AmountUSD > o.MaxLoanAmountUSD {
		return fault.New(fault.KindInvalidInput, "requested amount exceeds offer limit")
	}
	if in.DurationDays > o.MaxDurationDays {
		return fault.New(fault.KindInvalidInput, "duration exceeds offer limit")
	}
	return nil
}

// Request originates a Pending loan against an offer, consulting the
// valuation oracle for a live collateral snapshot.
func (u *Usecase) Request(ctx context.Context, caller string, in RequestInput) (uint64, error) {
	if err := u.breaker.Ensure(ctx); err != nil {
		return 0, err
	}
	if in.AmountUSD <= 0 || math.IsNaN(in.AmountUSD) || math.IsInf(in.AmountUSD, 0) {
		return 0, fault.New(fault.KindInvalidInput, "loan amount must be positive")
	}
	if in.DurationDays < 1 {
		return 0, fault.New(fault.KindInvalidInput, "duration must be at least 1 day")
	}

	o, err := u.getOffer(ctx, in.OfferID)
	if err != nil {
		return 0, err
	}
	if err := checkOfferTerms(o, in); err != nil {
		return 0, err
	}

	// Suspension point: other operations may complete while this call is out.
	snap, err := u.oracle.GetAsset(ctx, in.AssetID)
	if err != nil {
		return 0, wrapOracleErr(err)
	}

	if snap.Owner != caller {
		return 0, fault.New(fault.KindUnauthorized, "caller does not own this asset")
	}
	if snap.VerificationScore < o.MinVerificationScore {
		return 0, fault.New(fault.KindInvalidInput, "asset verification score too low")
	}
	if !o.AcceptsKind(snap.AssetType) {
		return 0, fault.New(fault.KindInvalidInput, "asset type not accepted by lender")
	}
	if snap.VerifiedValueUSD <= 0 || math.IsNaN(snap.VerifiedValueUSD) || math.IsInf(snap.VerifiedValueUSD, 0) {
		return 0, fault.New(fault.KindVerificationFailed, "oracle returned a non-positive valuation")
	}

	ltv := risk.LTV(in.AmountUSD, snap.VerifiedValueUSD)
	if ltv > o.MaxLTVRatio {
		return 0, fault.New(fault.KindInvalidInput, "loan-to-value ratio too high")
	}
	threshold := risk.Threshold(snap.AssetType, ltv)

	l := &loan.Loan{
		Borrower:             caller,
		Lender:               o.Lender,
		OfferID:              o.ID,
		Collateral:           *snap,
		LoanAmountUSD:        in.AmountUSD,
		PaymentMethod:        o.PaymentMethod,
		InterestRate:         o.InterestRate,
		DurationDays:         in.DurationDays,
		Status:               loan.StatusPending,
		LoanToValueRatio:     ltv,
		LiquidationThreshold: threshold,
	}

	// Commit: the offer was read before the suspension point, so its terms
	// are re-checked against current state in the same transaction that
	// persists the loan.
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		cur, err := r.Offers.GetByID(ctx, in.OfferID)
		if err != nil {
			return mapRecordErr(err, "offer %d not found", in.OfferID)
		}
		if err := checkOfferTerms(cur, in); err != nil {
			return err
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return 0, wrapInfraErr(err)
	}
	return l.ID, nil
}

// Fund is the commitment point: Pending → Active, lender-only.
func (u *Usecase) Fund(ctx context.Context, caller string, loanID uint64) error {
	if err := u.breaker.Ensure(ctx); err != nil {
		return err
	}
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Lender != caller {
			return fault.New(fault.KindUnauthorized, "only the lender can fund the loan")
		}
		if l.Status != loan.StatusPending {
			return fault.Newf(fault.KindInvalidState, "loan %d is not pending funding", loanID)
		}
		now := u.now()
		due := now.AddDate(0, 0, l.DurationDays)
		l.Status = loan.StatusActive
		l.FundedAt = &now
		l.DueDate = &due
		return r.Loans.Save(ctx, l)
	})
	return wrapLoanTxErr(err, loanID)
}

// Repay settles in full: Active → Repaid, borrower-only. No partial payments.
func (u *Usecase) Repay(ctx context.Context, caller string, loanID uint64) error {
	if err := u.breaker.Ensure(ctx); err != nil {
		return err
	}
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Borrower != caller {
			return fault.New(fault.KindUnauthorized, "only the borrower can repay the loan")
		}
		if l.Status != loan.StatusActive {
			return fault.Newf(fault.KindInvalidState, "loan %d is not active", loanID)
		}
		now := u.now()
		l.Status = loan.StatusRepaid
		l.RepaidAt = &now
		return r.Loans.Save(ctx, l)
	})
	return wrapLoanTxErr(err, loanID)
}

// LiquidationResult reports the outcome of a forced sale. The status flip is
// final once committed; a failed downstream ownership transfer is surfaced
// here for reconciliation, never rolled back.
type LiquidationResult struct {
	LoanID            uint64 `json:"loan_id"`
	TransferCompleted bool   `json:"transfer_completed"`
	TransferError     string `json:"transfer_error,omitempty"`
}

// Liquidate force-closes an Active loan that is past due or whose freshly
// recomputed LTV reached the frozen threshold. Manual calls are lender-only;
// the scanner invokes the same path as SystemCaller. The Active precondition
// is re-checked under lock immediately before the write, so of two racing
// liquidations exactly one succeeds.
func (u *Usecase) Liquidate(ctx context.Context, caller string, loanID uint64) (*LiquidationResult, error) {
	if err := u.breaker.Ensure(ctx); err != nil {
		return nil, err
	}

	l, err := u.Get(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if caller != SystemCaller && caller != l.Lender {
		return nil, fault.New(fault.KindUnauthorized, "only the lender can liquidate")
	}
	if l.Status != loan.StatusActive {
		return nil, fault.Newf(fault.KindInvalidState, "loan %d is not active", loanID)
	}

	// Suspension point. A timeout here aborts with zero mutation.
	fresh, err := u.oracle.GetAsset(ctx, l.Collateral.AssetID)
	if err != nil {
		return nil, wrapOracleErr(err)
	}
	if fresh.VerifiedValueUSD <= 0 || math.IsNaN(fresh.VerifiedValueUSD) || math.IsInf(fresh.VerifiedValueUSD, 0) {
		// A broken valuation must never read as infinitely underwater.
		return nil, fault.New(fault.KindVerificationFailed, "oracle returned a non-positive valuation")
	}

	now := u.now()
	currentLTV := risk.LTV(l.LoanAmountUSD, fresh.VerifiedValueUSD)
	if !l.PastDue(now) && currentLTV < l.LiquidationThreshold {
		return nil, fault.Newf(fault.KindInvalidState, "loan %d cannot be liquidated yet", loanID)
	}

	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, cur *loan.Loan) error {
		// Authoritative re-check: the status observed before the oracle call
		// is not trusted here.
		if cur.Status != loan.StatusActive {
			return fault.Newf(fault.KindInvalidState, "loan %d is not active", loanID)
		}
		cur.Status = loan.StatusLiquidated
		return r.Loans.Save(ctx, cur)
	})
	if err != nil {
		return nil, wrapLoanTxErr(err, loanID)
	}

	// Post-flip: the forced-sale decision is final and auditable even if the
	// transfer rail is down.
	res := &LiquidationResult{LoanID: loanID, TransferCompleted: true}
	if err := u.registry.Transfer(ctx, l.Collateral.AssetID, l.Lender); err != nil {
		log.Printf("loan %d liquidated but ownership transfer failed: %v", loanID, err)
		res.TransferCompleted = false
		res.TransferError = err.Error()
	}
	return res, nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*loan.Loan, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, mapRecordErr(err, "loan %d not found", loanID)
	}
	return l, nil
}

// ListByParticipant returns every loan where the principal is borrower or
// lender.
func (u *Usecase) ListByParticipant(ctx context.Context, principal string) ([]loan.Loan, error) {
	out, err := u.loans.ListByParticipant(ctx, principal)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "list loans: %v", err)
	}
	return out, nil
}

func (u *Usecase) Stats(ctx context.Context) (*loan.Stats, error) {
	total, err := u.loans.CountAll(ctx)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}
	active, err := u.loans.CountByStatus(ctx, loan.StatusActive)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}
	repaid, err := u.loans.CountByStatus(ctx, loan.StatusRepaid)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}
	liquidated, err := u.loans.CountByStatus(ctx, loan.StatusLiquidated)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}
	volume, err := u.loans.SumAmountExcludingStatus(ctx, loan.StatusPending)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}
	activeOffers, err := u.offers.CountActive(ctx)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "stats: %v", err)
	}

	s := &loan.Stats{
		TotalLoans:     total,
		ActiveLoans:    active,
		TotalVolumeUSD: volume,
		ActiveOffers:   activeOffers,
	}
	if funded := active + repaid + liquidated; funded > 0 {
		s.DefaultRate = float64(liquidated) / float64(funded)
	}
	return s, nil
}

// ---- error mapping helpers ----

func (u *Usecase) getOffer(ctx context.Context, id uint64) (*offer.Offer, error) {
	o, err := u.offers.GetByID(ctx, id)
	if err != nil {
		return nil, mapRecordErr(err, "offer %d not found", id)
	}
	return o, nil
}

func mapRecordErr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.Newf(fault.KindNotFound, format, args...)
	}
	return fault.Newf(fault.KindUnavailable, "storage: %v", err)
}

// wrapOracleErr preserves fault kinds set by the oracle adapter and folds
// anything else into a retryable unavailable.
func wrapOracleErr(err error) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Newf(fault.KindUnavailable, "valuation oracle: %v", err)
}

func wrapInfraErr(err error) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Newf(fault.KindUnavailable, "storage: %v", err)
}

func wrapLoanTxErr(err error, loanID uint64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.Newf(fault.KindNotFound, "loan %d not found", loanID)
	}
	return wrapInfraErr(err)
}
