package offer

import (
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

// Offer is a lender's standing terms. Immutable after creation except the
// IsActive flag: deactivation is a logical delete so in-flight loan requests
// can never race an in-place term edit, and loan→offer traceability survives.
type Offer struct {
	ID                   uint64              `gorm:"primaryKey;column:id" json:"id"`
	Lender               string              `gorm:"size:32;index:idx_offers_lender" json:"lender"`
	MaxLoanAmountUSD     float64             `gorm:"type:decimal(18,2);column:max_loan_amount_usd" json:"max_loan_amount_usd"`
	MinVerificationScore float64             `gorm:"type:decimal(4,3);column:min_verification_score" json:"min_verification_score"`
	MaxLTVRatio          float64             `gorm:"type:decimal(4,3);column:max_ltv_ratio" json:"max_ltv_ratio"`
	InterestRate         float64             `gorm:"type:decimal(6,3);column:interest_rate" json:"interest_rate"`
	MaxDurationDays      int                 `gorm:"column:max_duration_days" json:"max_duration_days"`
	AcceptedAssetTypes   []asset.Type        `gorm:"serializer:json;column:accepted_asset_types" json:"accepted_asset_types"`
	PaymentMethod        asset.PaymentMethod `gorm:"size:16;column:payment_method" json:"payment_method"`
	IsActive             bool                `gorm:"index:idx_offers_active;column:is_active" json:"is_active"`
	CreatedAt            time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"autoUpdateTime" json:"-"`
}

func (Offer) TableName() string { return "loan_offers" }

// AcceptsKind reports whether the offer takes collateral of the given type,
// matching by kind tag only.
func (o *Offer) AcceptsKind(t asset.Type) bool {
	for _, at := range o.AcceptedAssetTypes {
		if at.SameKind(t) {
			return true
		}
	}
	return false
}
