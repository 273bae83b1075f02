package loan

import (
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
	// StatusDefaulted is reserved for a future grace-period policy. No
	// transition reaches it today; time-triggered forced sales land on
	// StatusLiquidated instead.
	StatusDefaulted Status = "defaulted"
)

// Terminal states have no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusRepaid || s == StatusLiquidated || s == StatusDefaulted
}

// Loan is the ledger record. Collateral, LoanToValueRatio and
// LiquidationThreshold are frozen at origination; risk decisions after that
// always re-fetch a live asset snapshot and compare against the frozen
// threshold.
type Loan struct {
	ID               uint64              `gorm:"primaryKey;column:id" json:"id"`
	Borrower         string              `gorm:"size:32;index:idx_loans_borrower" json:"borrower"`
	Lender           string              `gorm:"size:32;index:idx_loans_lender" json:"lender"`
	OfferID          uint64              `gorm:"index;column:offer_id" json:"offer_id"`
	Collateral       asset.Collateral    `gorm:"serializer:json;column:collateral_asset" json:"collateral_asset"`
	LoanAmountUSD    float64             `gorm:"type:decimal(18,2);column:loan_amount_usd" json:"loan_amount_usd"`
	PaymentMethod    asset.PaymentMethod `gorm:"size:16;column:payment_method" json:"payment_method"`
	InterestRate     float64             `gorm:"type:decimal(6,3);column:interest_rate" json:"interest_rate"`
	DurationDays     int                 `gorm:"column:duration_days" json:"duration_days"`
	Status           Status              `gorm:"size:16;index:idx_loans_status;column:status" json:"status"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"-"`
	FundedAt         *time.Time          `gorm:"column:funded_at" json:"funded_at,omitempty"`
	DueDate          *time.Time          `gorm:"column:due_date" json:"due_date,omitempty"`
	RepaidAt         *time.Time          `gorm:"column:repaid_at" json:"repaid_at,omitempty"`
	LoanToValueRatio float64             `gorm:"type:decimal(5,4);column:loan_to_value_ratio" json:"loan_to_value_ratio"`
	// LiquidationThreshold is always > LoanToValueRatio and <= 0.95.
	LiquidationThreshold float64 `gorm:"type:decimal(5,4);column:liquidation_threshold" json:"liquidation_threshold"`
}

func (Loan) TableName() string { return "loans" }

// PastDue reports whether the repayment window has elapsed. False for loans
// that were never funded.
func (l *Loan) PastDue(now time.Time) bool {
	return l.DueDate != nil && now.After(*l.DueDate)
}
