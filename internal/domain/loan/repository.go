package loan

import "context"

// Stats is the aggregate view exposed by get_stats. TotalVolumeUSD sums every
// loan that ever got past Pending; DefaultRate is the liquidated share of
// funded loans.
type Stats struct {
	TotalLoans     int64   `json:"total_loans"`
	ActiveLoans    int64   `json:"active_loans"`
	TotalVolumeUSD float64 `json:"total_volume_usd"`
	ActiveOffers   int64   `json:"active_offers"`
	DefaultRate    float64 `json:"default_rate"`
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate locks the row for the enclosing transaction so status
	// transitions can re-check preconditions atomically before writing.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	ListByStatus(ctx context.Context, s Status) ([]Loan, error)
	ListByParticipant(ctx context.Context, principal string) ([]Loan, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, s Status) (int64, error)
	SumAmountExcludingStatus(ctx context.Context, s Status) (float64, error)
}
