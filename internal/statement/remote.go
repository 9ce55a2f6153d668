package statement

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finbook/internal/models"
)

// RemoteTransaction is one entry of the parse endpoint's transactions
// array. Providers are loose about number formatting, so Amount accepts
// both JSON numbers and strings.
type RemoteTransaction struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Amount      FlexAmount `json:"amount"`
	Type        string     `json:"type,omitempty"`
	Category    string     `json:"category,omitempty"`
}

type FlexAmount struct {
	decimal.Decimal
}

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	// degrade to zero on junk, same contract as ParseAmount
	a.Decimal = ParseAmount(s)
	return nil
}

// MapRemoteTransactions converts a remote response into filtered
// transactions. Type comes from the explicit field when present, otherwise
// from the amount sign. A category the provider already assigned is kept
// when it names a known category; anything else is left for the suggestion
// engine.
func MapRemoteTransactions(remote []RemoteTransaction) []ParsedTransaction {
	transactions := make([]ParsedTransaction, 0, len(remote))
	for _, rt := range remote {
		tx := ParsedTransaction{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(rt.Description),
			Amount:      rt.Amount.Decimal,
		}

		if date, ok := ParseDate(rt.Date); ok {
			tx.Date = date
		}

		tx.Type = inferType(rt.Type, tx.Amount.IsNegative())
		tx.Amount = tx.Amount.Abs()
		tx.Selected = tx.Type == models.TransactionDebit

		if category, ok := models.ParseCategory(rt.Category); ok {
			tx.Category = category
		}

		transactions = append(transactions, tx)
	}

	return Filter(transactions)
}
