package uowmock

import (
	"context"

	"github.com/uzochukwuV/lendcore/internal/domain/loan"
	"github.com/uzochukwuV/lendcore/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

// UoW is a pass-through unit of work for tests: no real transaction, it just
// hands the configured repos (and, for WithinLoanTx, the loan loaded through
// them) to the callback. Override the Fn fields for failure scenarios.
type UoW struct {
	Repos          uow.Repos
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error
}

func New(r uow.Repos) *UoW { return &UoW{Repos: r} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(m.Repos)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	l, err := m.Repos.Loans.GetByIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(m.Repos, l)
}
