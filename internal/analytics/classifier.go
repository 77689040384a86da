package analytics

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finsight/backend/internal/model"
)

// Prediction is the classifier's verdict for a transaction description.
type Prediction struct {
	Category   model.Category `json:"category"`
	Confidence float64        `json:"confidence"`
}

// categoryRule matches a keyword set against a description or merchant.
// Rules are evaluated in declaration order and the first match wins, so a
// description containing both a food and a shopping keyword classifies as
// Food.
type categoryRule struct {
	category   model.Category
	keywords   []string
	confidence float64
}

var classificationRules = []categoryRule{
	{
		category:   model.CategoryFood,
		keywords:   []string{"restaurant", "cafe", "coffee", "food", "grocery", "supermarket", "pizza", "burger"},
		confidence: 0.8,
	},
	{
		category:   model.CategoryTransportation,
		keywords:   []string{"gas", "fuel", "uber", "taxi", "bus", "train", "parking", "toll"},
		confidence: 0.8,
	},
	{
		category:   model.CategoryEntertainment,
		keywords:   []string{"movie", "cinema", "netflix", "spotify", "game", "concert", "theater"},
		confidence: 0.8,
	},
	{
		category:   model.CategoryUtilities,
		keywords:   []string{"electric", "water", "internet", "phone", "utility", "bill"},
		confidence: 0.8,
	},
	{
		category:   model.CategoryHealthcare,
		keywords:   []string{"hospital", "doctor", "pharmacy", "medical", "health", "clinic"},
		confidence: 0.8,
	},
	{
		category:   model.CategoryShopping,
		keywords:   []string{"amazon", "store", "shop", "mall", "retail", "clothing", "electronics"},
		confidence: 0.7,
	},
}

// fallbackConfidence applies when no rule matches and the transaction
// defaults to Other.
const fallbackConfidence = 0.3

// ClassifyTransaction assigns a category to a free-text transaction
// description using the ordered rule list. Keywords match case-insensitively
// as substrings of either the description or the merchant. The amount is
// accepted for interface stability and reserved for future amount-based
// heuristics; it does not influence matching today.
func ClassifyTransaction(description string, amount float64, merchant string) Prediction {
	descriptionLower := strings.ToLower(description)
	merchantLower := strings.ToLower(merchant)

	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(descriptionLower, keyword) || strings.Contains(merchantLower, keyword) {
				return Prediction{Category: rule.category, Confidence: rule.confidence}
			}
		}
	}
	return Prediction{Category: model.CategoryOther, Confidence: fallbackConfidence}
}

var merchantCaser = cases.Title(language.English)

// NormalizeMerchant tidies a raw merchant string for display: collapses
// whitespace and title-cases the result.
func NormalizeMerchant(merchant string) string {
	fields := strings.Fields(merchant)
	if len(fields) == 0 {
		return ""
	}
	return merchantCaser.String(strings.ToLower(strings.Join(fields, " ")))
}
