package storage

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/insightdelivered/statement-parser/internal/models"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Transaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBatch stores every transaction of the batch and returns how many rows
// were inserted. Transactions whose id is already stored are left untouched.
func (d *Database) SaveBatch(batch *models.Batch, source string) (int64, error) {
	if len(batch.Transactions) == 0 {
		return 0, nil
	}

	rows := make([]Transaction, 0, len(batch.Transactions))
	for _, txn := range batch.Transactions {
		rows = append(rows, fromModel(txn, batch.Format, source))
	}

	res := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Transactions returns stored transactions ordered by date, optionally
// limited to one format.
func (d *Database) Transactions(format models.Format) ([]models.Transaction, error) {
	q := d.db.Order("date, id")
	if format != "" {
		q = q.Where("format = ?", string(format))
	}

	var rows []Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	out := make([]models.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.ToModel()
	}
	return out, nil
}
