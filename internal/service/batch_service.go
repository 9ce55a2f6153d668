package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finbook/internal/models"
	"finbook/internal/statement"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNothingSelected = errors.New("no transactions selected")
	ErrNoRowsSaved     = errors.New("no rows could be saved")
)

// StatementStore is the persistence surface the reconciler drives.
type StatementStore interface {
	InsertRow(ctx context.Context, row *models.StatementRow) error
	AggregateBatch(ctx context.Context, userID, batchID uuid.UUID) (int64, error)
	ListOrphanBatches(ctx context.Context, userID uuid.UUID) ([]models.OrphanBatch, error)
}

// ReportInvalidator lets the reconciler drop stale cached reports after a
// commit changes the expense set.
type ReportInvalidator interface {
	Invalidate(userID uuid.UUID)
}

type CommitResult struct {
	BatchID    uuid.UUID
	Saved      int
	Total      int
	Aggregated int64
}

// BatchService persists user-tagged transactions under one batch id and
// reconciles them into expense records.
type BatchService struct {
	rows    StatementStore
	reports ReportInvalidator
	logger  *zap.Logger
}

func NewBatchService(rows StatementStore, reports ReportInvalidator, logger *zap.Logger) *BatchService {
	return &BatchService{
		rows:    rows,
		reports: reports,
		logger:  logger,
	}
}

// Commit writes the selected transactions as statement rows and runs the
// aggregation step. The caller-supplied batchID is authoritative and never
// regenerated; a nil id means this is the first commit of the cycle and one
// is assigned here. Individual row failures are logged and skipped; the
// commit fails only when no row persisted at all or aggregation failed.
func (s *BatchService) Commit(ctx context.Context, userID, batchID uuid.UUID, transactions []statement.ParsedTransaction) (*CommitResult, error) {
	if batchID == uuid.Nil {
		batchID = uuid.New()
	}

	selected := make([]statement.ParsedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Selected {
			selected = append(selected, tx)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}

	result := &CommitResult{BatchID: batchID, Total: len(selected)}

	// sequential writes: one slow row never races another, and partial
	// failure accounting stays exact
	now := time.Now()
	for _, tx := range selected {
		row := &models.StatementRow{
			ID:            uuid.New(),
			UserID:        userID,
			UploadBatchID: batchID,
			Date:          tx.Date,
			Description:   tx.Description,
			Amount:        tx.Amount,
			Type:          tx.Type,
			Category:      tx.Category,
			Status:        models.RowStatusPending,
			CreatedAt:     now,
		}
		if err := s.rows.InsertRow(ctx, row); err != nil {
			s.logger.Warn("Failed to save statement row",
				zap.String("batch_id", batchID.String()),
				zap.String("description", tx.Description),
				zap.Error(err),
			)
			continue
		}
		result.Saved++
	}

	if result.Saved == 0 {
		return result, ErrNoRowsSaved
	}

	aggregated, err := s.rows.AggregateBatch(ctx, userID, batchID)
	if err != nil {
		// rows are persisted but unaggregated; the batch shows up in the
		// orphan list until ReaggregateBatch succeeds
		return result, fmt.Errorf("batch %s saved but aggregation failed: %w", batchID, err)
	}
	result.Aggregated = aggregated

	if s.reports != nil {
		s.reports.Invalidate(userID)
	}

	return result, nil
}

// ListOrphanBatches surfaces batches whose aggregation never completed.
func (s *BatchService) ListOrphanBatches(ctx context.Context, userID uuid.UUID) ([]models.OrphanBatch, error) {
	return s.rows.ListOrphanBatches(ctx, userID)
}

// ReaggregateBatch re-runs the idempotent aggregation step for a batch.
// Safe to call on already aggregated batches: the dedup guard makes it a
// no-op.
func (s *BatchService) ReaggregateBatch(ctx context.Context, userID, batchID uuid.UUID) (int64, error) {
	aggregated, err := s.rows.AggregateBatch(ctx, userID, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to re-aggregate batch %s: %w", batchID, err)
	}
	if s.reports != nil {
		s.reports.Invalidate(userID)
	}
	return aggregated, nil
}

// PrepareExpensesFromTransactions derives expense payloads directly from
// tagged transactions for flows that bypass server-side aggregation. The
// filter must stay in lockstep with the aggregation SQL: selected debit
// transactions with a category, nothing else.
func PrepareExpensesFromTransactions(userID, batchID uuid.UUID, transactions []statement.ParsedTransaction) []models.Expense {
	now := time.Now()
	expenses := make([]models.Expense, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.Selected || tx.Type != models.TransactionDebit || tx.Category == "" {
			continue
		}
		expenses = append(expenses, models.Expense{
			ID:            uuid.New(),
			UserID:        userID,
			BatchID:       batchID,
			Date:          tx.Date,
			Description:   tx.Description,
			Amount:        tx.Amount,
			Category:      tx.Category,
			FromStatement: true,
			CreatedAt:     now,
		})
	}
	return expenses
}
