package service

import (
	"context"
	"time"

	"finbook/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ExpenseStore is the read surface for reporting.
type ExpenseStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Expense, error)
	SummaryByCategory(ctx context.Context, userID uuid.UUID) ([]models.CategorySummary, error)
}

// ReportService serves expense listings and per-category summaries. The
// summary is cached per user; commits invalidate through the
// ReportInvalidator interface.
type ReportService struct {
	expenses ExpenseStore
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewReportService(expenses ExpenseStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		expenses: expenses,
		cache:    cache.New(5*time.Minute, 10*time.Minute),
		logger:   logger,
	}
}

func (s *ReportService) List(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	return s.expenses.List(ctx, userID)
}

func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID) ([]models.CategorySummary, error) {
	key := summaryKey(userID)
	if cached, found := s.cache.Get(key); found {
		return cached.([]models.CategorySummary), nil
	}

	summary, err := s.expenses.SummaryByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *ReportService) Invalidate(userID uuid.UUID) {
	s.cache.Delete(summaryKey(userID))
}

func summaryKey(userID uuid.UUID) string {
	return "summary:" + userID.String()
}
