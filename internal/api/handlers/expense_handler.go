package handlers

import (
	"time"

	"finbook/internal/dto"
	"finbook/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewExpenseHandler(reportService *service.ReportService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// List godoc
// @Summary List expenses
// @Description List all expense records for the authenticated user
// @Tags expenses
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	expenses, err := h.reportService.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list expenses",
		})
	}

	resp := make([]dto.ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, dto.ExpenseResponse{
			ID:            e.ID.String(),
			BatchID:       e.BatchID.String(),
			Date:          e.Date.Format(time.DateOnly),
			Description:   e.Description,
			Amount:        e.Amount.StringFixed(2),
			Category:      string(e.Category),
			FromStatement: e.FromStatement,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(resp)
}

// Summary godoc
// @Summary Expense summary by category
// @Description Aggregate expense totals and counts per category
// @Tags expenses
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.CategorySummaryResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/expenses/summary [get]
func (h *ExpenseHandler) Summary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	summary, err := h.reportService.Summary(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build expense summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build expense summary",
		})
	}

	resp := make([]dto.CategorySummaryResponse, 0, len(summary))
	for _, s := range summary {
		resp = append(resp, dto.CategorySummaryResponse{
			Category: string(s.Category),
			Total:    s.Total.StringFixed(2),
			Count:    s.Count,
		})
	}

	return c.JSON(resp)
}
