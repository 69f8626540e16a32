package storage

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Transaction represents a stored statement transaction.
type Transaction struct {
	gorm.Model
	TransactionID string          `gorm:"uniqueIndex"`
	Format        string          `gorm:"index"`
	Source        string          // file the batch was read from
	Date          string          `gorm:"index"`
	Description   string
	Amount        decimal.Decimal `gorm:"type:decimal(20,2)"`
	Balance       bool            // opening/closing balance row
}

func fromModel(txn models.Transaction, format models.Format, source string) Transaction {
	return Transaction{
		TransactionID: txn.ID,
		Format:        string(format),
		Source:        source,
		Date:          txn.Date,
		Description:   txn.Description,
		Amount:        txn.Amount,
		Balance:       txn.Balance,
	}
}

// ToModel converts the stored row back to a parser transaction.
func (t Transaction) ToModel() models.Transaction {
	return models.Transaction{
		ID:          t.TransactionID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Balance:     t.Balance,
	}
}
