package suggest

import (
	"strings"

	"finbook/internal/models"
	"finbook/internal/statement"
)

const (
	// confidenceFloor is both the catch-all confidence and the threshold a
	// category must clear to beat the catch-all.
	confidenceFloor = 0.4
	confidenceCap   = 0.95

	// marketplaceKeyword gets a hand-tuned boost: "jumia" in a description
	// is shopping even when the generic scorer is unsure.
	marketplaceKeyword    = "jumia"
	marketplaceConfidence = 0.6
	marketplaceCutoff     = 0.7
)

type keywordSet struct {
	category models.TransactionCategory
	keywords []string
}

// Ordered: ties between categories resolve to the first-listed one. The
// catch-all is deliberately absent, it only wins by default.
var keywordSets = []keywordSet{
	{models.CategoryFood, []string{
		"restaurant", "eatery", "food", "cafe", "coffee", "kitchen",
		"pizza", "chicken", "grocer", "supermarket", "bakery", "bar",
	}},
	{models.CategoryTransport, []string{
		"uber", "bolt", "taxi", "transport", "fuel", "petrol",
		"filling station", "bus fare", "flight", "airline", "parking",
	}},
	{models.CategoryUtilities, []string{
		"electric", "utility", "phcn", "nepa", "water", "internet",
		"airtime", "data bundle", "dstv", "gotv", "power", "gas",
	}},
	{models.CategoryShopping, []string{
		"shop", "store", "mall", "jumia", "konga", "amazon",
		"market", "boutique", "clothing",
	}},
	{models.CategoryEntertainment, []string{
		"cinema", "movie", "netflix", "spotify", "game", "club",
		"lounge", "concert",
	}},
	{models.CategoryHealthcare, []string{
		"hospital", "clinic", "pharmacy", "medical", "health",
		"dental", "drug",
	}},
	{models.CategoryEducation, []string{
		"school", "tuition", "course", "textbook", "university",
		"college", "training", "lesson",
	}},
}

// Suggest scores a description against every category's keyword list and
// returns the best advisory suggestion. Confidence is the matched keyword
// mass relative to the description length, scaled and capped; descriptions
// that match nothing fall through to the catch-all at the floor confidence.
func Suggest(description string) statement.CategorySuggestion {
	lower := strings.ToLower(strings.TrimSpace(description))
	best := statement.CategorySuggestion{Category: models.CategoryOther}

	if lower != "" {
		for _, set := range keywordSets {
			matchedLen := 0
			for _, kw := range set.keywords {
				if strings.Contains(lower, kw) {
					matchedLen += len(kw)
				}
			}
			if matchedLen == 0 {
				continue
			}
			confidence := float64(matchedLen) / float64(len(lower)) * 3
			if confidence > confidenceCap {
				confidence = confidenceCap
			}
			if confidence > best.Confidence {
				best = statement.CategorySuggestion{Category: set.category, Confidence: confidence}
			}
		}

		if strings.Contains(lower, marketplaceKeyword) && best.Confidence < marketplaceCutoff {
			best.Category = models.CategoryShopping
			if best.Confidence < marketplaceConfidence {
				best.Confidence = marketplaceConfidence
			}
		}
	}

	if best.Confidence < confidenceFloor {
		return statement.CategorySuggestion{Category: models.CategoryOther, Confidence: confidenceFloor}
	}
	return best
}

// Annotate attaches a suggestion to every transaction that does not carry
// one yet. Suggestions are advisory only and never populate Category.
func Annotate(transactions []statement.ParsedTransaction) {
	for i := range transactions {
		if transactions[i].Suggestion != nil {
			continue
		}
		s := Suggest(transactions[i].Description)
		transactions[i].Suggestion = &s
	}
}
