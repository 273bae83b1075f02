// Package scanner runs the periodic liquidation sweep: a read pass over the
// active book that funnels every candidate through the exact same liquidate
// path as manual calls, so eligibility and side effects are defined once.
package scanner

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	"github.com/uzochukwuV/lendcore/internal/domain/loan"
	"github.com/uzochukwuV/lendcore/internal/domain/state"
	"github.com/uzochukwuV/lendcore/internal/risk"
	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"
	loanuc "github.com/uzochukwuV/lendcore/internal/usecase/loan"
)

// DefaultInterval is the sweep cadence the book is tuned for.
const DefaultInterval = 5 * time.Minute

// Ledger is the slice of the loan use case the scanner drives.
type Ledger interface {
	Liquidate(ctx context.Context, caller string, loanID uint64) (*loanuc.LiquidationResult, error)
}

type Scanner struct {
	loans    loan.Repository
	ledger   Ledger
	oracle   loanuc.Oracle
	states   state.Repository
	breaker  *breaker.Breaker
	interval time.Duration
	now      func() time.Time
}

func New(loans loan.Repository, ledger Ledger, o loanuc.Oracle, st state.Repository, b *breaker.Breaker, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scanner{
		loans:    loans,
		ledger:   ledger,
		oracle:   o,
		states:   st,
		breaker:  b,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start blocks, sweeping once per interval until ctx is cancelled.
func (s *Scanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("liquidation scanner started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("liquidation scanner stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				if fault.IsKind(err, fault.KindPaused) {
					continue
				}
				log.Printf("liquidation sweep failed: %v", err)
			}
		}
	}
}

// LastRun reads the persisted marker; zero time when no sweep ever finished.
func (s *Scanner) LastRun(ctx context.Context) (time.Time, error) {
	return s.states.GetTime(ctx, state.KeyScannerLastRun)
}

// RunOnce sweeps every Active loan: each gets a live re-valuation, the type
// haircut, and a current-LTV check against its frozen threshold. Past-due
// loans are enqueued regardless of LTV. Candidates are then liquidated one by
// one; per-loan failures (lost races, oracle rejections at the authoritative
// re-check) are logged and skipped. Returns the successfully liquidated ids.
func (s *Scanner) RunOnce(ctx context.Context) ([]uint64, error) {
	if err := s.breaker.Ensure(ctx); err != nil {
		return nil, err
	}

	active, err := s.loans.ListByStatus(ctx, loan.StatusActive)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "list active loans: %v", err)
	}

	now := s.now()
	var candidates []uint64
	for i := range active {
		l := &active[i]
		if l.PastDue(now) {
			candidates = append(candidates, l.ID)
			continue
		}
		// Live re-fetch at the decision point; the origination snapshot is
		// never trusted for a liquidation decision.
		fresh, err := s.oracle.GetAsset(ctx, l.Collateral.AssetID)
		if err != nil {
			log.Printf("sweep: skipping loan %d, oracle: %v", l.ID, err)
			continue
		}
		if fresh.VerifiedValueUSD <= 0 || math.IsNaN(fresh.VerifiedValueUSD) || math.IsInf(fresh.VerifiedValueUSD, 0) {
			log.Printf("sweep: skipping loan %d, bad valuation %v", l.ID, fresh.VerifiedValueUSD)
			continue
		}
		currentLTV := risk.LTV(l.LoanAmountUSD, risk.CurrentValue(*fresh))
		if currentLTV >= l.LiquidationThreshold {
			candidates = append(candidates, l.ID)
		}
	}

	var liquidated []uint64
	for _, id := range candidates {
		if _, err := s.ledger.Liquidate(ctx, loanuc.SystemCaller, id); err != nil {
			log.Printf("sweep: loan %d not liquidated: %v", id, err)
			continue
		}
		liquidated = append(liquidated, id)
	}

	if err := s.states.SetTime(ctx, state.KeyScannerLastRun, now); err != nil {
		log.Printf("sweep: persist last-run marker: %v", err)
	}
	return liquidated, nil
}
