package mysql

import (
	loanDomain "github.com/uzochukwuV/lendcore/internal/domain/loan"
	offerDomain "github.com/uzochukwuV/lendcore/internal/domain/offer"

	"gorm.io/gorm"
)

// Migrate creates the ledger schema, engine_state included.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&offerDomain.Offer{}, &loanDomain.Loan{}, &engineState{})
}
