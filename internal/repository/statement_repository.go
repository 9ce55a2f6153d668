package repository

import (
	"context"
	"fmt"

	"finbook/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type StatementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatementRepository(db *pgxpool.Pool, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StatementRepository) InsertRow(ctx context.Context, row *models.StatementRow) error {
	query := squirrel.Insert("statement_rows").
		Columns("id", "user_id", "upload_batch_id", "date", "description", "amount", "type", "category", "status", "created_at").
		Values(row.ID, row.UserID, row.UploadBatchID, row.Date, row.Description, row.Amount, row.Type, row.Category, row.Status, row.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// aggregateSQL projects pending debit rows with a category into expense
// records. The NOT EXISTS guard makes the step idempotent: re-running the
// same batch inserts nothing new.
const aggregateSQL = `
INSERT INTO expenses (id, user_id, batch_id, date, description, amount, category, from_statement, created_at)
SELECT gen_random_uuid(), sr.user_id, sr.upload_batch_id, sr.date, sr.description, sr.amount, sr.category, TRUE, NOW()
FROM statement_rows sr
WHERE sr.user_id = $1
  AND sr.upload_batch_id = $2
  AND sr.type = 'debit'
  AND sr.category <> ''
  AND NOT EXISTS (
    SELECT 1 FROM expenses e
    WHERE e.batch_id = sr.upload_batch_id
      AND e.date = sr.date
      AND e.description = sr.description
      AND e.amount = sr.amount
  )`

const markAggregatedSQL = `
UPDATE statement_rows
SET status = 'aggregated'
WHERE user_id = $1 AND upload_batch_id = $2 AND status = 'pending'`

// AggregateBatch runs the idempotent aggregation step for one batch inside
// a transaction: expense projection plus marking every pending row of the
// batch aggregated, including credit and uncategorized rows that do not
// become expenses. Returns the number of expense records created.
func (r *StatementRepository) AggregateBatch(ctx context.Context, userID, batchID uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin aggregation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, aggregateSQL, userID, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate batch: %w", err)
	}

	if _, err := tx.Exec(ctx, markAggregatedSQL, userID, batchID); err != nil {
		return 0, fmt.Errorf("failed to mark rows aggregated: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit aggregation: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListOrphanBatches returns batches that still hold pending rows, which
// means their aggregation step never completed.
func (r *StatementRepository) ListOrphanBatches(ctx context.Context, userID uuid.UUID) ([]models.OrphanBatch, error) {
	query := squirrel.Select("upload_batch_id", "COUNT(*) AS pending_rows", "MIN(created_at) AS oldest_row").
		From("statement_rows").
		Where(squirrel.Eq{"user_id": userID, "status": models.RowStatusPending}).
		GroupBy("upload_batch_id").
		OrderBy("oldest_row ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []models.OrphanBatch
	for rows.Next() {
		var o models.OrphanBatch
		if err := rows.Scan(&o.BatchID, &o.PendingRows, &o.OldestRow); err != nil {
			return nil, err
		}
		orphans = append(orphans, o)
	}

	return orphans, rows.Err()
}
