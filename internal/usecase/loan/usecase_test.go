package loan

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	domain "github.com/uzochukwuV/lendcore/internal/domain/loan"
	offerDomain "github.com/uzochukwuV/lendcore/internal/domain/offer"
	"github.com/uzochukwuV/lendcore/internal/domain/state"
	"github.com/uzochukwuV/lendcore/internal/domain/uow"
	"github.com/uzochukwuV/lendcore/internal/testutil/loanmock"
	"github.com/uzochukwuV/lendcore/internal/testutil/offermock"
	"github.com/uzochukwuV/lendcore/internal/testutil/oraclemock"
	"github.com/uzochukwuV/lendcore/internal/testutil/registrymock"
	"github.com/uzochukwuV/lendcore/internal/testutil/statemock"
	"github.com/uzochukwuV/lendcore/internal/testutil/uowmock"
	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"

	"gorm.io/gorm"
)

const (
	lender   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	borrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	stranger = "cccccccccccccccccccccccccccccccc"
)

// env backs the mocks with tiny in-memory stores so state transitions can be
// observed end to end.
type env struct {
	loans    map[uint64]*domain.Loan
	offers   map[uint64]*offerDomain.Offer
	nextLoan uint64

	loanRepo  *loanmock.Repo
	offerRepo *offermock.Repo
	oracle    *oraclemock.Oracle
	registry  *registrymock.Registry
	states    *statemock.Store
	uc        *Usecase
	now       time.Time
}

func newEnv(t *testing.T, oracle *oraclemock.Oracle) *env {
	t.Helper()
	e := &env{
		loans:    map[uint64]*domain.Loan{},
		offers:   map[uint64]*offerDomain.Offer{},
		nextLoan: 1,
		oracle:   oracle,
		registry: &registrymock.Registry{},
		states:   statemock.New(),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	getLoan := func(ctx context.Context, id uint64) (*domain.Loan, error) {
		l, ok := e.loans[id]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		cp := *l
		return &cp, nil
	}
	e.loanRepo = &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domain.Loan) error {
			l.ID = e.nextLoan
			e.nextLoan++
			cp := *l
			e.loans[l.ID] = &cp
			return nil
		},
		GetByIDFn:          getLoan,
		GetByIDForUpdateFn: getLoan,
		SaveFn: func(ctx context.Context, l *domain.Loan) error {
			cp := *l
			e.loans[l.ID] = &cp
			return nil
		},
	}
	e.offerRepo = &offermock.Repo{
		GetByIDFn: func(ctx context.Context, id uint64) (*offerDomain.Offer, error) {
			o, ok := e.offers[id]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			cp := *o
			return &cp, nil
		},
	}
	tx := uowmock.New(uow.Repos{Loans: e.loanRepo, Offers: e.offerRepo})
	e.uc = NewUsecase(e.loanRepo, e.offerRepo, tx, e.oracle, e.registry, breaker.New(e.states))
	e.uc.now = func() time.Time { return e.now }
	return e
}

func (e *env) addOffer(o offerDomain.Offer) *offerDomain.Offer {
	e.offers[o.ID] = &o
	return &o
}

func realEstateOffer() offerDomain.Offer {
	return offerDomain.Offer{
		ID:                   1,
		Lender:               lender,
		MaxLoanAmountUSD:     50_000,
		MinVerificationScore: 0.8,
		MaxLTVRatio:          0.5,
		InterestRate:         10,
		MaxDurationDays:      365,
		AcceptedAssetTypes:   []asset.Type{{Kind: asset.KindRealEstate}},
		PaymentMethod:        asset.PayUSDC,
		IsActive:             true,
	}
}

func houseOracle(valueUSD, score float64) *oraclemock.Oracle {
	return oraclemock.Fixed(asset.Collateral{
		AssetType:         asset.Type{Kind: asset.KindRealEstate},
		VerifiedValueUSD:  valueUSD,
		VerificationScore: score,
		Owner:             borrower,
	})
}

func wantKind(t *testing.T, err error, k fault.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s fault, got nil", k)
	}
	if got := fault.KindOf(err); got != k {
		t.Fatalf("fault kind = %s, want %s (err: %v)", got, k, err)
	}
}

// ----- request_loan -----

func TestRequest_ScenarioA_FreezesLTVAndThreshold(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())

	id, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	l := e.loans[id]
	if l == nil {
		t.Fatalf("loan %d not persisted", id)
	}
	if l.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending", l.Status)
	}
	if math.Abs(l.LoanToValueRatio-0.4) > 1e-9 {
		t.Fatalf("ltv = %v, want 0.4", l.LoanToValueRatio)
	}
	// 0.4 * 1.2 * 1.1
	if math.Abs(l.LiquidationThreshold-0.528) > 1e-9 {
		t.Fatalf("threshold = %v, want 0.528", l.LiquidationThreshold)
	}
	if l.LiquidationThreshold <= l.LoanToValueRatio || l.LiquidationThreshold > 0.95 {
		t.Fatalf("threshold invariant violated: ltv=%v threshold=%v", l.LoanToValueRatio, l.LiquidationThreshold)
	}
	if l.Lender != lender || l.Borrower != borrower || l.PaymentMethod != asset.PayUSDC {
		t.Fatalf("unexpected loan: %+v", l)
	}
}

func TestRequest_ScenarioB_AmountOverOfferLimit_NoPersistence(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 60_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidInput)
	if len(e.loans) != 0 {
		t.Fatalf("loan persisted on rejected request")
	}
}

func TestRequest_LTVTooHigh(t *testing.T) {
	e := newEnv(t, houseOracle(90_000, 0.9))
	e.addOffer(realEstateOffer())

	// 50000/90000 = 0.555 > 0.5
	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 50_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidInput)
	if len(e.loans) != 0 {
		t.Fatalf("loan persisted on rejected request")
	}
}

func TestRequest_NotOwner(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())

	_, err := e.uc.Request(context.Background(), stranger, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindUnauthorized)
}

func TestRequest_ScoreTooLow(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.7))
	e.addOffer(realEstateOffer())

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidInput)
}

func TestRequest_AssetKindNotAccepted(t *testing.T) {
	e := newEnv(t, oraclemock.Fixed(asset.Collateral{
		AssetType:         asset.Type{Kind: asset.KindVehicle},
		VerifiedValueUSD:  100_000,
		VerificationScore: 0.9,
		Owner:             borrower,
	}))
	e.addOffer(realEstateOffer())

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "car-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidInput)
}

func TestRequest_OtherLabelsMatchByKindOnly(t *testing.T) {
	e := newEnv(t, oraclemock.Fixed(asset.Collateral{
		AssetType:         asset.Type{Kind: asset.KindOther, Label: "boat"},
		VerifiedValueUSD:  100_000,
		VerificationScore: 0.9,
		Owner:             borrower,
	}))
	o := realEstateOffer()
	o.AcceptedAssetTypes = []asset.Type{{Kind: asset.KindOther, Label: "painting"}}
	e.addOffer(o)

	if _, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "boat-1", AmountUSD: 40_000, DurationDays: 30,
	}); err != nil {
		t.Fatalf("kind-tag matching should accept differing labels: %v", err)
	}
}

func TestRequest_OfferMissingOrInactive(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 7, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindNotFound)

	o := realEstateOffer()
	o.IsActive = false
	e.addOffer(o)
	_, err = e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidState)
}

func TestRequest_OracleDown_NoPersistence(t *testing.T) {
	e := newEnv(t, &oraclemock.Oracle{
		GetAssetFn: func(ctx context.Context, assetID string) (*asset.Collateral, error) {
			return nil, fault.New(fault.KindUnavailable, "oracle timeout")
		},
	})
	e.addOffer(realEstateOffer())

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindUnavailable)
	if len(e.loans) != 0 {
		t.Fatalf("loan persisted despite oracle failure")
	}
}

func TestRequest_OfferDeactivatedDuringOracleCall(t *testing.T) {
	snapshot := houseOracle(100_000, 0.9)
	e := newEnv(t, snapshot)
	o := e.addOffer(realEstateOffer())
	// The oracle call deactivates the offer mid-flight; the commit-time
	// re-check must reject the request.
	e.uc.oracle = &oraclemock.Oracle{GetAssetFn: func(ctx context.Context, assetID string) (*asset.Collateral, error) {
		o.IsActive = false
		return snapshot.GetAsset(ctx, assetID)
	}}

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	wantKind(t, err, fault.KindInvalidState)
	if len(e.loans) != 0 {
		t.Fatalf("loan persisted against a deactivated offer")
	}
}

// ----- fund / repay -----

func (e *env) pendingLoan(t *testing.T) uint64 {
	t.Helper()
	id, err := e.uc.Request(context.Background(), borrower, RequestInput{
		OfferID: 1, AssetID: "house-1", AmountUSD: 40_000, DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("seed pending loan: %v", err)
	}
	return id
}

func (e *env) activeLoan(t *testing.T) uint64 {
	t.Helper()
	id := e.pendingLoan(t)
	if err := e.uc.Fund(context.Background(), lender, id); err != nil {
		t.Fatalf("seed active loan: %v", err)
	}
	return id
}

func TestFund_SetsDueDate(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.pendingLoan(t)

	if err := e.uc.Fund(context.Background(), lender, id); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	l := e.loans[id]
	if l.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", l.Status)
	}
	if l.FundedAt == nil || !l.FundedAt.Equal(e.now) {
		t.Fatalf("funded_at = %v", l.FundedAt)
	}
	if l.DueDate == nil || !l.DueDate.Equal(e.now.AddDate(0, 0, 30)) {
		t.Fatalf("due_date = %v, want %v", l.DueDate, e.now.AddDate(0, 0, 30))
	}
}

func TestFund_OnlyLender_OnlyPending(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.pendingLoan(t)

	wantKind(t, e.uc.Fund(context.Background(), borrower, id), fault.KindUnauthorized)
	if err := e.uc.Fund(context.Background(), lender, id); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	wantKind(t, e.uc.Fund(context.Background(), lender, id), fault.KindInvalidState)
}

func TestRepay_OnlyBorrower_OnlyActive(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.pendingLoan(t)

	// not active yet
	wantKind(t, e.uc.Repay(context.Background(), borrower, id), fault.KindInvalidState)

	if err := e.uc.Fund(context.Background(), lender, id); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	wantKind(t, e.uc.Repay(context.Background(), lender, id), fault.KindUnauthorized)

	if err := e.uc.Repay(context.Background(), borrower, id); err != nil {
		t.Fatalf("Repay: %v", err)
	}
	l := e.loans[id]
	if l.Status != domain.StatusRepaid || l.RepaidAt == nil {
		t.Fatalf("unexpected loan after repay: %+v", l)
	}
}

// ----- liquidate -----

func TestLiquidate_ScenarioC_PastDueRegardlessOfLTV(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t) // due in 30 days, healthy LTV

	e.now = e.now.AddDate(0, 0, 31)
	res, err := e.uc.Liquidate(context.Background(), lender, id)
	if err != nil {
		t.Fatalf("Liquidate: %v", err)
	}
	if !res.TransferCompleted {
		t.Fatalf("transfer should have completed: %+v", res)
	}
	if e.loans[id].Status != domain.StatusLiquidated {
		t.Fatalf("status = %s, want liquidated", e.loans[id].Status)
	}
	if len(e.registry.Calls) != 1 || e.registry.Calls[0].NewOwner != lender {
		t.Fatalf("collateral not transferred to lender: %+v", e.registry.Calls)
	}
}

func TestLiquidate_ScenarioD_ThresholdBoundary(t *testing.T) {
	// frozen: ltv 0.4, threshold 0.528
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)

	// value drop to 80000: 40000/80000 = 0.50 < 0.528 → stays active
	e.uc.oracle = houseOracle(80_000, 0.9)
	_, err := e.uc.Liquidate(context.Background(), lender, id)
	wantKind(t, err, fault.KindInvalidState)
	if e.loans[id].Status != domain.StatusActive {
		t.Fatalf("healthy loan was liquidated")
	}

	// value drop to 75000: 40000/75000 ≈ 0.533 ≥ 0.528 → liquidates
	e.uc.oracle = houseOracle(75_000, 0.9)
	if _, err := e.uc.Liquidate(context.Background(), lender, id); err != nil {
		t.Fatalf("Liquidate: %v", err)
	}
	if e.loans[id].Status != domain.StatusLiquidated {
		t.Fatalf("status = %s, want liquidated", e.loans[id].Status)
	}
}

func TestLiquidate_ZeroValuationDoesNotReadAsUnderwater(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t) // frozen ltv 0.4, threshold 0.528, 30 days to due

	for _, value := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		e.uc.oracle = houseOracle(value, 0.9)
		_, err := e.uc.Liquidate(context.Background(), lender, id)
		wantKind(t, err, fault.KindVerificationFailed)
	}
	if e.loans[id].Status != domain.StatusActive {
		t.Fatalf("status = %s, healthy loan liquidated on a broken valuation", e.loans[id].Status)
	}
	if len(e.registry.Calls) != 0 {
		t.Fatalf("ownership transfer requested: %+v", e.registry.Calls)
	}
}

func TestLiquidate_Idempotence(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)
	e.now = e.now.AddDate(0, 0, 31)

	if _, err := e.uc.Liquidate(context.Background(), lender, id); err != nil {
		t.Fatalf("first Liquidate: %v", err)
	}
	_, err := e.uc.Liquidate(context.Background(), lender, id)
	wantKind(t, err, fault.KindInvalidState)
}

func TestLiquidate_RaceLoserFailsAtCommit(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)
	e.now = e.now.AddDate(0, 0, 31)

	// Simulate a competing liquidation landing during the oracle call: the
	// pre-checked status is Active, the locked re-read is not.
	e.loanRepo.GetByIDForUpdateFn = func(ctx context.Context, lid uint64) (*domain.Loan, error) {
		cp := *e.loans[lid]
		cp.Status = domain.StatusLiquidated
		return &cp, nil
	}
	saved := false
	e.loanRepo.SaveFn = func(ctx context.Context, l *domain.Loan) error {
		saved = true
		return nil
	}

	_, err := e.uc.Liquidate(context.Background(), lender, id)
	wantKind(t, err, fault.KindInvalidState)
	if saved {
		t.Fatalf("second liquidation wrote state")
	}
	if len(e.registry.Calls) != 0 {
		t.Fatalf("race loser requested an ownership transfer")
	}
}

func TestLiquidate_TransferFailureIsPartialSuccess(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)
	e.now = e.now.AddDate(0, 0, 31)

	e.registry.TransferFn = func(ctx context.Context, assetID, newOwner string) error {
		return errors.New("registry down")
	}
	res, err := e.uc.Liquidate(context.Background(), lender, id)
	if err != nil {
		t.Fatalf("Liquidate must not fail on post-flip transfer: %v", err)
	}
	if res.TransferCompleted || res.TransferError == "" {
		t.Fatalf("transfer failure not surfaced: %+v", res)
	}
	// the flip is final
	if e.loans[id].Status != domain.StatusLiquidated {
		t.Fatalf("status rolled back to %s", e.loans[id].Status)
	}
}

func TestLiquidate_SystemCallerAllowed_StrangerNot(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)
	e.now = e.now.AddDate(0, 0, 31)

	_, err := e.uc.Liquidate(context.Background(), stranger, id)
	wantKind(t, err, fault.KindUnauthorized)

	if _, err := e.uc.Liquidate(context.Background(), SystemCaller, id); err != nil {
		t.Fatalf("system liquidation: %v", err)
	}
}

// ----- terminal-state closure -----

func TestTerminalStates_RejectEveryTransition(t *testing.T) {
	for _, terminal := range []domain.Status{domain.StatusRepaid, domain.StatusLiquidated} {
		e := newEnv(t, houseOracle(100_000, 0.9))
		e.addOffer(realEstateOffer())
		id := e.activeLoan(t)
		e.loans[id].Status = terminal
		e.now = e.now.AddDate(0, 0, 31)

		wantKind(t, e.uc.Fund(context.Background(), lender, id), fault.KindInvalidState)
		wantKind(t, e.uc.Repay(context.Background(), borrower, id), fault.KindInvalidState)
		_, err := e.uc.Liquidate(context.Background(), lender, id)
		wantKind(t, err, fault.KindInvalidState)
	}
}

// ----- circuit breaker -----

func TestPausedBreaker_GatesEveryMutation(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.addOffer(realEstateOffer())
	id := e.activeLoan(t)

	if err := e.states.SetBool(context.Background(), state.KeyBreakerPaused, true); err != nil {
		t.Fatal(err)
	}
	oracleCallsBefore := e.oracle.Calls

	_, err := e.uc.Request(context.Background(), borrower, RequestInput{OfferID: 1, AssetID: "x", AmountUSD: 1000, DurationDays: 10})
	wantKind(t, err, fault.KindPaused)
	wantKind(t, e.uc.Fund(context.Background(), lender, id), fault.KindPaused)
	wantKind(t, e.uc.Repay(context.Background(), borrower, id), fault.KindPaused)
	_, err = e.uc.Liquidate(context.Background(), lender, id)
	wantKind(t, err, fault.KindPaused)

	if e.oracle.Calls != oracleCallsBefore {
		t.Fatalf("paused engine made %d external calls", e.oracle.Calls-oracleCallsBefore)
	}

	// reads still work, and unpausing restores mutations
	if _, err := e.uc.Get(context.Background(), id); err != nil {
		t.Fatalf("Get while paused: %v", err)
	}
	if err := e.states.SetBool(context.Background(), state.KeyBreakerPaused, false); err != nil {
		t.Fatal(err)
	}
	if err := e.uc.Repay(context.Background(), borrower, id); err != nil {
		t.Fatalf("Repay after unpause: %v", err)
	}
}

// ----- queries -----

func TestGet_NotFound(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	_, err := e.uc.Get(context.Background(), 99)
	wantKind(t, err, fault.KindNotFound)
}

func TestStats_DefaultRate(t *testing.T) {
	e := newEnv(t, houseOracle(100_000, 0.9))
	e.loanRepo.CountAllFn = func(ctx context.Context) (int64, error) { return 10, nil }
	e.loanRepo.CountByStatusFn = func(ctx context.Context, s domain.Status) (int64, error) {
		switch s {
		case domain.StatusActive:
			return 4, nil
		case domain.StatusRepaid:
			return 3, nil
		case domain.StatusLiquidated:
			return 1, nil
		}
		return 0, nil
	}
	e.loanRepo.SumAmountExcludingStatusFn = func(ctx context.Context, s domain.Status) (float64, error) {
		return 320_000, nil
	}
	e.offerRepo.CountActiveFn = func(ctx context.Context) (int64, error) { return 5, nil }

	s, err := e.uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.TotalLoans != 10 || s.ActiveLoans != 4 || s.ActiveOffers != 5 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.TotalVolumeUSD != 320_000 {
		t.Fatalf("volume = %v", s.TotalVolumeUSD)
	}
	if math.Abs(s.DefaultRate-0.125) > 1e-9 { // 1 of 8 funded
		t.Fatalf("default rate = %v, want 0.125", s.DefaultRate)
	}
}
