package statement

import "finbook/internal/models"

// SelectAll marks every debit transaction selected. Credits are expense
// candidates only when the user opts in explicitly, so their Selected flag
// is never touched here.
func SelectAll(transactions []ParsedTransaction) {
	for i := range transactions {
		if transactions[i].Type == models.TransactionDebit {
			transactions[i].Selected = true
		}
	}
}

// ApplyCategory assigns a category to the transaction with the given id.
// Returns false when no transaction matches.
func ApplyCategory(transactions []ParsedTransaction, id string, category models.TransactionCategory) bool {
	for i := range transactions {
		if transactions[i].ID == id {
			transactions[i].Category = category
			return true
		}
	}
	return false
}

// ApplyCategoryBulk assigns a category to every selected transaction and
// returns how many were updated.
func ApplyCategoryBulk(transactions []ParsedTransaction, category models.TransactionCategory) int {
	updated := 0
	for i := range transactions {
		if transactions[i].Selected {
			transactions[i].Category = category
			updated++
		}
	}
	return updated
}

// FillFromSuggestions copies suggestion categories into transactions that
// have no category yet and whose suggestion clears minConfidence. Explicit
// categories are never overwritten.
func FillFromSuggestions(transactions []ParsedTransaction, minConfidence float64) {
	for i := range transactions {
		tx := &transactions[i]
		if tx.Category != "" || tx.Suggestion == nil {
			continue
		}
		if tx.Suggestion.Confidence >= minConfidence {
			tx.Category = tx.Suggestion.Category
		}
	}
}
