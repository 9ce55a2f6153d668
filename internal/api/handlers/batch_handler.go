package handlers

import (
	"errors"
	"time"

	"finbook/internal/dto"
	"finbook/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BatchHandler struct {
	batchService *service.BatchService
	logger       *zap.Logger
}

func NewBatchHandler(batchService *service.BatchService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		logger:       logger,
	}
}

// Commit godoc
// @Summary Commit tagged transactions
// @Description Persist selected transactions under one batch id and aggregate them into expenses
// @Tags batches
// @Accept json
// @Produce json
// @Param request body dto.CommitRequest true "Tagged transactions and optional batch id"
// @Security Bearer
// @Success 200 {object} dto.CommitResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/statements/commit [post]
func (h *BatchHandler) Commit(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CommitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	batchID := uuid.Nil
	if req.BatchID != "" {
		batchID, err = uuid.Parse(req.BatchID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid batch id",
			})
		}
	}

	result, err := h.batchService.Commit(c.Context(), userID, batchID, req.Transactions)
	if err != nil {
		if errors.Is(err, service.ErrNothingSelected) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No transactions selected",
			})
		}
		h.logger.Error("Batch commit failed", zap.Error(err))
		resp := fiber.Map{"error": "Failed to save transactions"}
		if result != nil {
			// the batch id lets the client retry or re-aggregate without
			// creating a second batch
			resp["batch_id"] = result.BatchID.String()
			resp["saved"] = result.Saved
			resp["total"] = result.Total
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}

	return c.JSON(dto.CommitResponse{
		BatchID:    result.BatchID.String(),
		Saved:      result.Saved,
		Total:      result.Total,
		Aggregated: result.Aggregated,
	})
}

// Aggregate godoc
// @Summary Re-run batch aggregation
// @Description Re-run the idempotent aggregation step for a batch whose aggregation failed
// @Tags batches
// @Produce json
// @Param id path string true "Batch id"
// @Security Bearer
// @Success 200 {object} dto.AggregateResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/batches/{id}/aggregate [post]
func (h *BatchHandler) Aggregate(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid batch id",
		})
	}

	aggregated, err := h.batchService.ReaggregateBatch(c.Context(), userID, batchID)
	if err != nil {
		h.logger.Error("Batch re-aggregation failed",
			zap.String("batch_id", batchID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to aggregate batch",
		})
	}

	return c.JSON(dto.AggregateResponse{
		BatchID:    batchID.String(),
		Aggregated: aggregated,
	})
}

// Orphans godoc
// @Summary List orphaned batches
// @Description List batches with persisted rows whose aggregation never completed
// @Tags batches
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.OrphanBatchResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/batches/orphans [get]
func (h *BatchHandler) Orphans(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	orphans, err := h.batchService.ListOrphanBatches(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orphan batches", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list orphan batches",
		})
	}

	resp := make([]dto.OrphanBatchResponse, 0, len(orphans))
	for _, o := range orphans {
		resp = append(resp, dto.OrphanBatchResponse{
			BatchID:     o.BatchID.String(),
			PendingRows: o.PendingRows,
			OldestRow:   o.OldestRow.Format(time.RFC3339),
		})
	}

	return c.JSON(resp)
}
