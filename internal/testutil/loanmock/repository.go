package loanmock

import (
	"context"
	"errors"

	domain "github.com/uzochukwuV/lendcore/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies loan.Repository. Fill in the
// fields a test needs; unfilled getters fail loudly.
type Repo struct {
	CreateFn                   func(ctx context.Context, l *domain.Loan) error
	GetByIDFn                  func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn         func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn                     func(ctx context.Context, l *domain.Loan) error
	ListByStatusFn             func(ctx context.Context, s domain.Status) ([]domain.Loan, error)
	ListByParticipantFn        func(ctx context.Context, principal string) ([]domain.Loan, error)
	CountAllFn                 func(ctx context.Context) (int64, error)
	CountByStatusFn            func(ctx context.Context, s domain.Status) (int64, error)
	SumAmountExcludingStatusFn func(ctx context.Context, s domain.Status) (float64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByStatus(ctx context.Context, s domain.Status) ([]domain.Loan, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, s)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByParticipant(ctx context.Context, principal string) ([]domain.Loan, error) {
	if m.ListByParticipantFn != nil {
		return m.ListByParticipantFn(ctx, principal)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFn != nil {
		return m.CountAllFn(ctx)
	}
	return 0, errUnimplemented
}

func (m *Repo) CountByStatus(ctx context.Context, s domain.Status) (int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, s)
	}
	return 0, errUnimplemented
}

func (m *Repo) SumAmountExcludingStatus(ctx context.Context, s domain.Status) (float64, error) {
	if m.SumAmountExcludingStatusFn != nil {
		return m.SumAmountExcludingStatusFn(ctx, s)
	}
	return 0, errUnimplemented
}
