package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"finbook/internal/dto"
	"finbook/internal/service"
	"finbook/internal/statement"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// autoFillConfidence is the bar a suggestion must clear before the upload
// surface pre-fills the category on first assignment. The user still
// reviews everything before commit.
const autoFillConfidence = 0.7

type UploadHandler struct {
	uploadService *service.UploadService
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload a bank statement
// @Description Parse a CSV, Excel or PDF bank statement into reviewable transactions
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file (.csv, .xlsx, .xls, .pdf)"
// @Param upload_id formData string false "Client-chosen upload id for polling and cancellation"
// @Param last_modified formData string false "File last-modified timestamp (unix seconds)"
// @Param mapping formData string false "Explicit column mapping JSON"
// @Security Bearer
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/statements/upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	content, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	lastModified, _ := strconv.ParseInt(c.FormValue("last_modified"), 10, 64)
	file := service.UploadFile{
		Name:         fileHeader.Filename,
		Size:         fileHeader.Size,
		LastModified: lastModified,
		Content:      content,
	}

	var mapping *statement.ColumnMapping
	if raw := c.FormValue("mapping"); raw != "" {
		mapping = &statement.ColumnMapping{Date: -1, Description: -1, Amount: -1, Type: -1}
		if err := json.Unmarshal([]byte(raw), mapping); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid column mapping",
			})
		}
	}

	uploadID, transactions, err := h.uploadService.Upload(c.Context(), userID, c.FormValue("upload_id"), file, mapping)
	if err != nil {
		if errors.Is(err, service.ErrUploadCancelled) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Upload cancelled",
			})
		}
		h.logger.Warn("Statement upload failed",
			zap.String("file", file.Name),
			zap.Error(err),
		)
		return c.Status(statusForKind(statement.KindOf(err))).JSON(fiber.Map{
			"error": userMessage(err),
		})
	}

	statement.FillFromSuggestions(transactions, autoFillConfidence)

	return c.JSON(dto.UploadResponse{
		UploadID:     uploadID,
		Transactions: transactions,
	})
}

// Status godoc
// @Summary Upload progress
// @Description Report the phase and progress percentage of an upload
// @Tags statements
// @Produce json
// @Param id path string true "Upload id"
// @Security Bearer
// @Success 200 {object} dto.UploadStatusResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/uploads/{id} [get]
func (h *UploadHandler) Status(c *fiber.Ctx) error {
	uploadID := c.Params("id")
	phase, percent, err := h.uploadService.Status(uploadID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Upload not found",
		})
	}

	return c.JSON(dto.UploadStatusResponse{
		UploadID: uploadID,
		Phase:    phase,
		Percent:  percent,
	})
}

// Cancel godoc
// @Summary Cancel an upload
// @Description Cooperatively cancel an in-flight upload
// @Tags statements
// @Produce json
// @Param id path string true "Upload id"
// @Security Bearer
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/uploads/{id} [delete]
func (h *UploadHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uploadService.Cancel(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Upload not found",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "cancelling",
	})
}

func statusForKind(kind statement.ErrorKind) int {
	switch kind {
	case statement.KindValidation:
		return fiber.StatusBadRequest
	case statement.KindAuth:
		return fiber.StatusUnauthorized
	case statement.KindContent, statement.KindPDFTechnical:
		return fiber.StatusUnprocessableEntity
	case statement.KindProvider:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadGateway
	}
}

// userMessage strips the kind prefix and wrapped cause, leaving the
// human-readable part of a classified error.
func userMessage(err error) string {
	var pe *statement.ParseError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, errors.New("user id missing from context")
	}
	return uuid.Parse(userIDStr)
}
