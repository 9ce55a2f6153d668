package dto

import "finbook/internal/statement"

type CommitRequest struct {
	BatchID      string                        `json:"batch_id,omitempty"`
	Transactions []statement.ParsedTransaction `json:"transactions" validate:"required"`
}

type CommitResponse struct {
	BatchID    string `json:"batch_id"`
	Saved      int    `json:"saved"`
	Total      int    `json:"total"`
	Aggregated int64  `json:"aggregated"`
}

type OrphanBatchResponse struct {
	BatchID     string `json:"batch_id"`
	PendingRows int    `json:"pending_rows"`
	OldestRow   string `json:"oldest_row"`
}

type AggregateResponse struct {
	BatchID    string `json:"batch_id"`
	Aggregated int64  `json:"aggregated"`
}
