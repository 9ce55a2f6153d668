package statement

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/models"
)

func TestFlexAmountUnmarshal(t *testing.T) {
	var rt RemoteTransaction

	require.NoError(t, json.Unmarshal([]byte(`{"amount": -42.5}`), &rt))
	assert.True(t, rt.Amount.Equal(decimal.RequireFromString("-42.5")))

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "₦1,200.00"}`), &rt))
	assert.True(t, rt.Amount.Equal(decimal.RequireFromString("1200.00")))

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "garbage"}`), &rt))
	assert.True(t, rt.Amount.IsZero())
}

func TestMapRemoteTransactions(t *testing.T) {
	t.Run("explicit type wins over sign", func(t *testing.T) {
		remote := []RemoteTransaction{
			{Date: "2024-01-05", Description: "POS purchase", Amount: flex("100"), Type: "debit"},
		}
		txs := MapRemoteTransactions(remote)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionDebit, txs[0].Type)
		assert.True(t, txs[0].Selected)
	})

	t.Run("sign infers type and amount is magnitude", func(t *testing.T) {
		remote := []RemoteTransaction{
			{Date: "2024-01-05", Description: "Coffee", Amount: flex("-4.50")},
			{Date: "2024-01-06", Description: "Salary", Amount: flex("2500")},
		}
		txs := MapRemoteTransactions(remote)
		require.Len(t, txs, 2)
		assert.Equal(t, models.TransactionDebit, txs[0].Type)
		assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("4.50")))
		assert.Equal(t, models.TransactionCredit, txs[1].Type)
		assert.False(t, txs[1].Selected)
	})

	t.Run("invariant filter drops bad rows", func(t *testing.T) {
		remote := []RemoteTransaction{
			{Date: "not a date", Description: "Missing date", Amount: flex("10")},
			{Date: "2024-01-05", Description: "   ", Amount: flex("10")},
			{Date: "2024-01-05", Description: "Keeper", Amount: flex("10")},
		}
		txs := MapRemoteTransactions(remote)
		require.Len(t, txs, 1)
		assert.Equal(t, "Keeper", txs[0].Description)
	})

	t.Run("known category kept unknown dropped", func(t *testing.T) {
		remote := []RemoteTransaction{
			{Date: "2024-01-05", Description: "Groceries", Amount: flex("-30"), Category: "Food"},
			{Date: "2024-01-05", Description: "Mystery", Amount: flex("-5"), Category: "weird-label"},
		}
		txs := MapRemoteTransactions(remote)
		require.Len(t, txs, 2)
		assert.Equal(t, models.CategoryFood, txs[0].Category)
		assert.Empty(t, txs[1].Category)
	})
}

func flex(s string) FlexAmount {
	return FlexAmount{Decimal: decimal.RequireFromString(s)}
}
