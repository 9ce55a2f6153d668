package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a durable expense record. FromStatement marks expenses derived
// from statement rows by the batch aggregation step; those carry the batch id
// they were aggregated from.
type Expense struct {
	ID            uuid.UUID           `db:"id"`
	UserID        uuid.UUID           `db:"user_id"`
	BatchID       uuid.UUID           `db:"batch_id"`
	Date          time.Time           `db:"date"`
	Description   string              `db:"description"`
	Amount        decimal.Decimal     `db:"amount"`
	Category      TransactionCategory `db:"category"`
	FromStatement bool                `db:"from_statement"`
	CreatedAt     time.Time           `db:"created_at"`
}

// CategorySummary is one bucket of the expense summary report.
type CategorySummary struct {
	Category TransactionCategory `db:"category"`
	Total    decimal.Decimal     `db:"total"`
	Count    int                 `db:"count"`
}
