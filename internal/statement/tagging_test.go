package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/internal/models"
)

func TestSelectAllOnlyTouchesDebits(t *testing.T) {
	txs := []ParsedTransaction{
		{ID: "a", Type: models.TransactionDebit, Selected: false},
		{ID: "b", Type: models.TransactionCredit, Selected: false},
		{ID: "c", Type: models.TransactionCredit, Selected: true},
	}

	SelectAll(txs)

	assert.True(t, txs[0].Selected)
	assert.False(t, txs[1].Selected, "credit must stay unselected")
	assert.True(t, txs[2].Selected, "credit selection must not be reset")
}

func TestApplyCategory(t *testing.T) {
	txs := []ParsedTransaction{{ID: "a"}, {ID: "b"}}

	require.True(t, ApplyCategory(txs, "b", models.CategoryTransport))
	assert.Equal(t, models.CategoryTransport, txs[1].Category)
	assert.Empty(t, txs[0].Category)

	assert.False(t, ApplyCategory(txs, "missing", models.CategoryFood))
}

func TestApplyCategoryBulk(t *testing.T) {
	txs := []ParsedTransaction{
		{ID: "a", Selected: true},
		{ID: "b", Selected: false},
		{ID: "c", Selected: true},
	}

	updated := ApplyCategoryBulk(txs, models.CategoryShopping)

	assert.Equal(t, 2, updated)
	assert.Equal(t, models.CategoryShopping, txs[0].Category)
	assert.Empty(t, txs[1].Category)
	assert.Equal(t, models.CategoryShopping, txs[2].Category)
}

func TestFillFromSuggestions(t *testing.T) {
	txs := []ParsedTransaction{
		{ID: "a", Suggestion: &CategorySuggestion{Category: models.CategoryFood, Confidence: 0.8}},
		{ID: "b", Category: models.CategoryTransport, Suggestion: &CategorySuggestion{Category: models.CategoryFood, Confidence: 0.9}},
		{ID: "c", Suggestion: &CategorySuggestion{Category: models.CategoryOther, Confidence: 0.4}},
		{ID: "d"},
	}

	FillFromSuggestions(txs, 0.6)

	assert.Equal(t, models.CategoryFood, txs[0].Category)
	assert.Equal(t, models.CategoryTransport, txs[1].Category, "explicit category never overwritten")
	assert.Empty(t, txs[2].Category, "below threshold")
	assert.Empty(t, txs[3].Category)
}
