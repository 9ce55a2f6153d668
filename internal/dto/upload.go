package dto

import "finbook/internal/statement"

type UploadResponse struct {
	UploadID     string                        `json:"upload_id"`
	Transactions []statement.ParsedTransaction `json:"transactions"`
}

type UploadStatusResponse struct {
	UploadID string `json:"upload_id"`
	Phase    string `json:"phase"`
	Percent  int    `json:"percent"`
}
