package uow

import (
	"context"

	"github.com/uzochukwuV/lendcore/internal/domain/loan"
	"github.com/uzochukwuV/lendcore/internal/domain/offer"
)

type Repos struct {
	Loans  loan.Repository
	Offers offer.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in. Every status
	// transition re-checks its preconditions against this locked copy, never
	// against a read taken before a suspension point.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
