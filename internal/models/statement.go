package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDebit  TransactionType = "debit"
	TransactionCredit TransactionType = "credit"
)

type RowStatus string

const (
	RowStatusPending    RowStatus = "pending"
	RowStatusAggregated RowStatus = "aggregated"
)

// OrphanBatch describes a batch whose rows were persisted but never
// aggregated into expenses, usually because the aggregation step failed
// after the row writes. Orphans are re-aggregated explicitly.
type OrphanBatch struct {
	BatchID     uuid.UUID `db:"upload_batch_id"`
	PendingRows int       `db:"pending_rows"`
	OldestRow   time.Time `db:"oldest_row"`
}

// StatementRow is one persisted bank-statement line, keyed by the upload
// batch it was committed under. Rows stay pending until the aggregation step
// projects them into expenses.
type StatementRow struct {
	ID            uuid.UUID           `db:"id"`
	UserID        uuid.UUID           `db:"user_id"`
	UploadBatchID uuid.UUID           `db:"upload_batch_id"`
	Date          time.Time           `db:"date"`
	Description   string              `db:"description"`
	Amount        decimal.Decimal     `db:"amount"`
	Type          TransactionType     `db:"type"`
	Category      TransactionCategory `db:"category"`
	Status        RowStatus           `db:"status"`
	CreatedAt     time.Time           `db:"created_at"`
}
