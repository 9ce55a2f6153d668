package dto

type ExpenseResponse struct {
	ID            string `json:"id"`
	BatchID       string `json:"batch_id,omitempty"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	FromStatement bool   `json:"from_statement"`
	CreatedAt     string `json:"created_at"`
}

type CategorySummaryResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}
