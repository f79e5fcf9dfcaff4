package classify

import (
	"context"
	"strings"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

const (
	keywordHitConfidence  = 0.7
	keywordMissConfidence = 0.4
)

// Keyword is a deterministic offline classifier used in development mode and
// tests. The table mirrors the hosted model's most common verdicts for Indian
// merchants.
type Keyword struct{}

// NewKeyword builds the offline classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

var keywordTable = []struct {
	category rewards.Category
	tokens   []string
}{
	{rewards.CategoryDining, []string{"swiggy", "zomato", "restaurant", "cafe", "dominos", "mcdonald", "pizza"}},
	{rewards.CategoryGroceries, []string{"dmart", "bigbasket", "grocery", "blinkit", "zepto", "instamart"}},
	{rewards.CategoryShopping, []string{"amazon", "flipkart", "myntra", "ajio", "croma", "nykaa"}},
	{rewards.CategoryTravel, []string{"makemytrip", "goibibo", "irctc", "indigo", "uber", "ola", "airline"}},
	{rewards.CategoryFuel, []string{"petrol", "fuel", "hpcl", "bpcl", "indian oil", "shell"}},
	{rewards.CategoryUtilities, []string{"electricity", "broadband", "airtel", "jio", "postpaid", "dth", "water bill"}},
	{rewards.CategoryEntertainment, []string{"netflix", "spotify", "bookmyshow", "hotstar", "prime video", "cinema"}},
}

// Classify implements rewards.Classifier with substring matching.
func (k *Keyword) Classify(_ context.Context, merchant string) (rewards.Classification, error) {
	text := strings.ToLower(merchant)
	for _, row := range keywordTable {
		for _, token := range row.tokens {
			if strings.Contains(text, token) {
				return rewards.Classification{Category: row.category, Confidence: keywordHitConfidence}, nil
			}
		}
	}
	return rewards.Classification{Category: rewards.CategoryOthers, Confidence: keywordMissConfidence}, nil
}
