package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/models"
)

func TestParseCSV(t *testing.T) {
	t.Run("quoted description with comma", func(t *testing.T) {
		input := "Date,Description,Amount\n2024-01-05,\"Coffee, Ltd\",-4.50\n"
		txs, err := ParseCSV(strings.NewReader(input), nil)
		require.NoError(t, err)
		require.Len(t, txs, 1)

		tx := txs[0]
		assert.Equal(t, "2024-01-05", tx.Date.Format(time.DateOnly))
		assert.Equal(t, "Coffee, Ltd", tx.Description)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("4.50")))
		assert.Equal(t, models.TransactionDebit, tx.Type)
		assert.True(t, tx.Selected)
	})

	t.Run("blank lines skipped", func(t *testing.T) {
		input := "Date,Description,Amount\n\n2024-01-05,Coffee,-4.50\n\n2024-01-06,Taxi,-12.00\n"
		txs, err := ParseCSV(strings.NewReader(input), nil)
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("empty file is a content error", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""), nil)
		require.Error(t, err)
		assert.Equal(t, KindContent, KindOf(err))
	})

	t.Run("unmappable headers is a content error", func(t *testing.T) {
		input := "Foo,Bar,Baz\nx,y,z\n"
		_, err := ParseCSV(strings.NewReader(input), nil)
		require.Error(t, err)
		assert.Equal(t, KindContent, KindOf(err))
	})

	t.Run("explicit mapping overrides guessing", func(t *testing.T) {
		input := "Foo,Bar,Baz\n2024-01-05,Coffee,-4.50\n"
		mapping := &ColumnMapping{Date: 0, Description: 1, Amount: 2, Type: -1}
		txs, err := ParseCSV(strings.NewReader(input), mapping)
		require.NoError(t, err)
		// the unrecognized label row survives as a reviewable garbage
		// transaction, the real row follows it
		require.Len(t, txs, 2)
		assert.Equal(t, "Coffee", txs[1].Description)
	})
}
