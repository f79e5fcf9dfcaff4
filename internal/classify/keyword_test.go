package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

func TestKeywordClassify(t *testing.T) {
	tests := []struct {
		merchant       string
		wantCategory   rewards.Category
		wantConfidence float64
	}{
		{"Swiggy", rewards.CategoryDining, keywordHitConfidence},
		{"ZOMATO ONLINE ORDER", rewards.CategoryDining, keywordHitConfidence},
		{"DMart Avenue", rewards.CategoryGroceries, keywordHitConfidence},
		{"Amazon.in", rewards.CategoryShopping, keywordHitConfidence},
		{"IRCTC ticket", rewards.CategoryTravel, keywordHitConfidence},
		{"BPCL petrol pump", rewards.CategoryFuel, keywordHitConfidence},
		{"Airtel postpaid", rewards.CategoryUtilities, keywordHitConfidence},
		{"Netflix subscription", rewards.CategoryEntertainment, keywordHitConfidence},
		{"Sharma Hardware Store", rewards.CategoryOthers, keywordMissConfidence},
	}

	classifier := NewKeyword()
	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			verdict, err := classifier.Classify(context.Background(), tt.merchant)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, verdict.Category)
			assert.Equal(t, tt.wantConfidence, verdict.Confidence)
		})
	}
}
