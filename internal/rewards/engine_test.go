package rewards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	verdict Classification
	err     error
	delay   time.Duration
}

func (s *stubClassifier) Classify(ctx context.Context, _ string) (Classification, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Classification{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Classification{}, s.err
	}
	return s.verdict, nil
}

func testWallet() []Candidate {
	return []Candidate{
		{
			CardID: "millennia", Name: "Millennia Credit Card", Bank: "HDFC Bank",
			Rules: Rules{CategoryDining: 0.025, CategoryShopping: 0.05},
		},
		{
			CardID: "swiggy-hdfc", Name: "Swiggy HDFC Bank Credit Card", Bank: "HDFC Bank",
			Rules: Rules{CategoryDining: 0.10, CategoryShopping: 0.05},
		},
	}
}

func TestAnalyzeRecommendsBestCard(t *testing.T) {
	engine := NewEngine(&stubClassifier{verdict: Classification{Category: CategoryDining, Confidence: 0.93}}, 0, "")

	rec, err := engine.Analyze(context.Background(), AnalyzeInput{
		Merchant: "Swiggy",
		Amount:   "1500",
		Wallet:   testWallet(),
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryDining, rec.Category)
	assert.Equal(t, 0.93, rec.Confidence)
	assert.Equal(t, "swiggy-hdfc", rec.Card.CardID)
	assert.Equal(t, "150.00", rec.Estimated.Value)
	assert.Equal(t, "INR", rec.Estimated.Unit)
	assert.Equal(t, 10.0, rec.Estimated.Percentage)
	assert.Contains(t, rec.Explanation, "Swiggy HDFC Bank Credit Card")
	assert.Contains(t, rec.Explanation, "dining")
}

func TestAnalyzeRewardValueRounding(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		rate      float64
		wantValue string
		wantPct   float64
	}{
		{"whole rupees", "1500", 0.05, "75.00", 5},
		{"zero amount", "0", 0.05, "0.00", 5},
		{"fractional rate", "1000", 0.025, "25.00", 2.5},
		{"half paisa rounds up", "5", 0.025, "0.13", 2.5},
		{"sub-half paisa rounds down", "799.5", 0.0125, "9.99", 1.25},
		{"tiny amount", "1", 0.0025, "0.00", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&stubClassifier{verdict: Classification{Category: CategoryDining, Confidence: 0.8}}, 0, "INR")
			rec, err := engine.Analyze(context.Background(), AnalyzeInput{
				Merchant: "Some Cafe",
				Amount:   tt.amount,
				Wallet:   []Candidate{{CardID: "only", Name: "Only Card", Rules: Rules{CategoryDining: tt.rate}}},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, rec.Estimated.Value)
			assert.Equal(t, tt.wantPct, rec.Estimated.Percentage)
		})
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	engine := NewEngine(&stubClassifier{verdict: Classification{Category: CategoryOthers}}, 0, "")

	tests := []struct {
		name      string
		merchant  string
		amount    string
		wantField string
	}{
		{"blank merchant", "   ", "100", "merchant"},
		{"empty amount", "Swiggy", "", "amount"},
		{"non-numeric amount", "Swiggy", "abc", "amount"},
		{"negative amount", "Swiggy", "-5", "amount"},
		{"nan amount", "Swiggy", "NaN", "amount"},
		{"infinite amount", "Swiggy", "Inf", "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Analyze(context.Background(), AnalyzeInput{
				Merchant: tt.merchant,
				Amount:   tt.amount,
				Wallet:   testWallet(),
			})
			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantField, invalid.Field)
		})
	}
}

func TestAnalyzeEmptyWallet(t *testing.T) {
	engine := NewEngine(&stubClassifier{verdict: Classification{Category: CategoryDining}}, 0, "")

	_, err := engine.Analyze(context.Background(), AnalyzeInput{Merchant: "Swiggy", Amount: "100"})
	assert.ErrorIs(t, err, ErrEmptyWallet)
}

func TestAnalyzeClassifierTimeout(t *testing.T) {
	engine := NewEngine(&stubClassifier{delay: time.Second}, 20*time.Millisecond, "")

	_, err := engine.Analyze(context.Background(), AnalyzeInput{
		Merchant: "Swiggy", Amount: "100", Wallet: testWallet(),
	})
	assert.ErrorIs(t, err, ErrClassifierTimeout)
}

func TestAnalyzeClassifierFailure(t *testing.T) {
	engine := NewEngine(&stubClassifier{err: errors.New("upstream 500")}, 0, "")

	_, err := engine.Analyze(context.Background(), AnalyzeInput{
		Merchant: "Swiggy", Amount: "100", Wallet: testWallet(),
	})
	assert.ErrorIs(t, err, ErrClassifierUnavailable)
}

func TestAnalyzeCallerCancellation(t *testing.T) {
	engine := NewEngine(&stubClassifier{delay: time.Second}, time.Minute, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, AnalyzeInput{Merchant: "Swiggy", Amount: "100", Wallet: testWallet()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrClassifierTimeout)
}
