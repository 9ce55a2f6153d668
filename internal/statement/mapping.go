package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finbook/internal/models"
)

var (
	dateKeywords = []string{"date", "posted", "time"}

	descriptionKeywords = []string{
		"description", "narration", "details", "particulars",
		"memo", "reference", "remarks", "transaction",
	}

	amountExactTokens = []string{"amount", "amt", "value"}

	debitKeywords = []string{"debit", "withdrawal"}

	typeKeywords = []string{"type", "dr/cr", "direction", "indicator"}
)

// GuessColumnMapping infers a mapping from header labels. Each header is
// matched against the keyword sets in fixed precedence order (date,
// description, amount by exact token, amount by debit keyword, type); the
// first matching field claims the header, and a later header can overwrite
// an earlier guess for the same field.
func GuessColumnMapping(headers []string) ColumnMapping {
	m := ColumnMapping{Date: -1, Description: -1, Amount: -1, Type: -1}

	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case containsAny(lower, dateKeywords):
			m.Date = i
		case containsAny(lower, descriptionKeywords):
			m.Description = i
		case exactMatch(lower, amountExactTokens):
			m.Amount = i
		case containsAny(lower, debitKeywords):
			m.Amount = i
		case containsAny(lower, typeKeywords):
			m.Type = i
		}
	}

	return m
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func exactMatch(s string, tokens []string) bool {
	for _, t := range tokens {
		if s == t {
			return true
		}
	}
	return false
}

var headerHintKeywords = []string{
	"date", "amount", "description", "debit", "credit",
	"balance", "narration", "type", "value", "particulars",
}

// ExtractHeadersAndData decides whether the first row is a header row by
// looking for finance-related keywords in it. When it is not, synthetic
// "Column N" labels are generated and every row is treated as data. A false
// negative just surfaces as one garbage transaction the user can deselect.
func ExtractHeadersAndData(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}

	first := rows[0]
	for _, cell := range first {
		if containsAny(strings.ToLower(cell), headerHintKeywords) {
			return first, rows[1:]
		}
	}

	headers := make([]string, len(first))
	for i := range headers {
		headers[i] = fmt.Sprintf("Column %d", i+1)
	}
	return headers, rows
}

// ParseRowsWithMapping applies a resolved mapping to raw rows. Missing
// date or description degrade to placeholders instead of dropping the row:
// mapped output is reviewed interactively before commit, so a visible
// placeholder beats a silently missing row. Direction comes from the type
// column when mapped, otherwise from the amount sign.
func ParseRowsWithMapping(rows [][]string, mapping ColumnMapping, hasHeaders bool) []ParsedTransaction {
	if hasHeaders && len(rows) > 0 {
		rows = rows[1:]
	}

	transactions := make([]ParsedTransaction, 0, len(rows))
	for i, row := range rows {
		date := time.Now()
		if raw := cellAt(row, mapping.Date); raw != "" {
			if parsed, ok := ParseDate(raw); ok {
				date = parsed
			}
		}

		description := strings.TrimSpace(cellAt(row, mapping.Description))
		if description == "" {
			description = fmt.Sprintf("Transaction %d", i+1)
		}

		amount := ParseAmount(cellAt(row, mapping.Amount))

		txType := inferType(cellAt(row, mapping.Type), amount.IsNegative())

		transactions = append(transactions, ParsedTransaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: description,
			Amount:      amount.Abs(),
			Type:        txType,
			Selected:    txType == models.TransactionDebit,
		})
	}

	return transactions
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// inferType resolves debit/credit from an explicit type cell, falling back
// to the amount sign (negative means money out).
func inferType(typeCell string, negative bool) models.TransactionType {
	switch strings.ToLower(strings.TrimSpace(typeCell)) {
	case "debit", "dr", "withdrawal", "d", "-":
		return models.TransactionDebit
	case "credit", "cr", "deposit", "c", "+":
		return models.TransactionCredit
	}
	if negative {
		return models.TransactionDebit
	}
	return models.TransactionCredit
}
