package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/models"
)

func TestGuessColumnMapping(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "standard export",
			headers: []string{"Date", "Description", "Amount"},
			want:    ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: -1},
		},
		{
			name:    "bank export with type column",
			headers: []string{"Transaction Date", "Narration", "Debit", "Type"},
			want:    ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: 3},
		},
		{
			name:    "last match wins per field",
			headers: []string{"Date", "Value Date", "Particulars", "Amount"},
			want:    ColumnMapping{Date: 1, Description: 2, Amount: 3, Type: -1},
		},
		{
			name:    "nothing recognized",
			headers: []string{"Foo", "Bar", "Baz"},
			want:    ColumnMapping{Date: -1, Description: -1, Amount: -1, Type: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GuessColumnMapping(tt.headers)
			assert.Equal(t, tt.want, got)
			// repeat run over the same labels must agree
			assert.Equal(t, got, GuessColumnMapping(tt.headers))
		})
	}
}

func TestColumnMappingUsable(t *testing.T) {
	assert.True(t, ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: -1}.Usable())
	assert.False(t, ColumnMapping{Date: -1, Description: 1, Amount: 2, Type: -1}.Usable())
	assert.False(t, ColumnMapping{Date: 0, Description: 1, Amount: -1, Type: 3}.Usable())
}

func TestExtractHeadersAndData(t *testing.T) {
	t.Run("header row detected", func(t *testing.T) {
		rows := [][]string{
			{"Date", "Description", "Amount"},
			{"2024-01-05", "Coffee", "-4.50"},
		}
		headers, data := ExtractHeadersAndData(rows)
		assert.Equal(t, []string{"Date", "Description", "Amount"}, headers)
		require.Len(t, data, 1)
	})

	t.Run("headerless file gets synthetic labels", func(t *testing.T) {
		rows := [][]string{
			{"2024-01-05", "Coffee", "-4.50"},
			{"2024-01-06", "Groceries", "-30.00"},
		}
		headers, data := ExtractHeadersAndData(rows)
		assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, headers)
		assert.Len(t, data, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		headers, data := ExtractHeadersAndData(nil)
		assert.Nil(t, headers)
		assert.Nil(t, data)
	})
}

func TestParseRowsWithMapping(t *testing.T) {
	mapping := ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: -1}

	t.Run("negative amount becomes selected debit", func(t *testing.T) {
		rows := [][]string{{"2024-01-05", "Coffee, Ltd", "-4.50"}}
		txs := ParseRowsWithMapping(rows, mapping, false)
		require.Len(t, txs, 1)
		tx := txs[0]
		assert.Equal(t, "Coffee, Ltd", tx.Description)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("4.50")))
		assert.Equal(t, models.TransactionDebit, tx.Type)
		assert.True(t, tx.Selected)
		assert.NotEmpty(t, tx.ID)
	})

	t.Run("positive amount becomes unselected credit", func(t *testing.T) {
		rows := [][]string{{"2024-01-05", "Salary", "1000.00"}}
		txs := ParseRowsWithMapping(rows, mapping, false)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionCredit, txs[0].Type)
		assert.False(t, txs[0].Selected)
	})

	t.Run("explicit type column overrides sign", func(t *testing.T) {
		withType := ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: 3}
		rows := [][]string{{"2024-01-05", "POS purchase", "4.50", "DR"}}
		txs := ParseRowsWithMapping(rows, withType, false)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionDebit, txs[0].Type)
	})

	t.Run("missing fields degrade to placeholders", func(t *testing.T) {
		rows := [][]string{{"bad date", "", "12"}}
		txs := ParseRowsWithMapping(rows, mapping, false)
		require.Len(t, txs, 1)
		assert.False(t, txs[0].Date.IsZero())
		assert.Equal(t, "Transaction 1", txs[0].Description)
	})

	t.Run("header row skipped", func(t *testing.T) {
		rows := [][]string{
			{"Date", "Description", "Amount"},
			{"2024-01-05", "Coffee", "-4.50"},
		}
		txs := ParseRowsWithMapping(rows, mapping, true)
		require.Len(t, txs, 1)
		assert.Equal(t, "Coffee", txs[0].Description)
	})
}
