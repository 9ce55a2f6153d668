package models

import "strings"

type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "food"
	CategoryTransport     TransactionCategory = "transport"
	CategoryUtilities     TransactionCategory = "utilities"
	CategoryShopping      TransactionCategory = "shopping"
	CategoryEntertainment TransactionCategory = "entertainment"
	CategoryHealthcare    TransactionCategory = "healthcare"
	CategoryEducation     TransactionCategory = "education"
	CategoryOther         TransactionCategory = "other"
)

// AllCategories lists every category in a stable order. CategoryOther is
// last: it is the catch-all and the suggestion engine skips it when scoring.
var AllCategories = []TransactionCategory{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

func ParseCategory(s string) (TransactionCategory, bool) {
	c := TransactionCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return known, true
		}
	}
	return "", false
}
