package catalog

import (
	"time"

	"github.com/cardsavvy/cardsavvy/internal/rewards"
)

// seedTime keeps seed entries stable across restarts of the in-memory repo.
var seedTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Seed returns the curated verified catalog the service ships with.
// Development mode preloads it into the in-memory repository; the Postgres
// migration inserts the same rows.
func Seed() []Entry {
	cards := []struct {
		id, name, issuer, network string
		rules                     rewards.Rules
	}{
		{
			"5f0c1f9a-1f3f-4f9e-9a35-c33b2a6f01a1", "Millennia Credit Card", "HDFC Bank", "Visa",
			rewards.Rules{
				rewards.CategoryDining: 0.025, rewards.CategoryGroceries: 0.025,
				rewards.CategoryShopping: 0.05, rewards.CategoryTravel: 0.01,
				rewards.CategoryFuel: 0.01, rewards.CategoryUtilities: 0.01,
				rewards.CategoryEntertainment: 0.025, rewards.CategoryOthers: 0.01,
			},
		},
		{
			"8d8b49c2-4a87-4a5d-b9be-3e2a6e0f12b2", "Swiggy HDFC Bank Credit Card", "HDFC Bank", "Mastercard",
			rewards.Rules{
				rewards.CategoryDining: 0.10, rewards.CategoryGroceries: 0.05,
				rewards.CategoryShopping: 0.05, rewards.CategoryTravel: 0.01,
				rewards.CategoryFuel: 0.0, rewards.CategoryUtilities: 0.01,
				rewards.CategoryEntertainment: 0.05, rewards.CategoryOthers: 0.01,
			},
		},
		{
			"0a7f2b44-95ef-4a0e-8d2a-54c8f4f7a9c3", "Amazon Pay ICICI Credit Card", "ICICI Bank", "Visa",
			rewards.Rules{
				rewards.CategoryDining: 0.02, rewards.CategoryGroceries: 0.02,
				rewards.CategoryShopping: 0.05, rewards.CategoryTravel: 0.01,
				rewards.CategoryFuel: 0.01, rewards.CategoryUtilities: 0.02,
				rewards.CategoryEntertainment: 0.02, rewards.CategoryOthers: 0.01,
			},
		},
		{
			"c2e0ff35-6f44-4c81-9f0b-6a1df9a2e5d4", "Ace Credit Card", "Axis Bank", "Mastercard",
			rewards.Rules{
				rewards.CategoryDining: 0.04, rewards.CategoryGroceries: 0.015,
				rewards.CategoryShopping: 0.015, rewards.CategoryTravel: 0.015,
				rewards.CategoryFuel: 0.015, rewards.CategoryUtilities: 0.05,
				rewards.CategoryEntertainment: 0.015, rewards.CategoryOthers: 0.015,
			},
		},
		{
			"f4d4e7aa-2d61-4b27-8d12-9f70f0c3b6e5", "SimplyCLICK Credit Card", "SBI Card", "Visa",
			rewards.Rules{
				rewards.CategoryDining: 0.0125, rewards.CategoryGroceries: 0.0125,
				rewards.CategoryShopping: 0.05, rewards.CategoryTravel: 0.025,
				rewards.CategoryFuel: 0.0, rewards.CategoryUtilities: 0.0025,
				rewards.CategoryEntertainment: 0.025, rewards.CategoryOthers: 0.0025,
			},
		},
		{
			"9b1a6c58-7c09-4d7e-bb0a-2f3d5b8c7a96", "BPCL SBI Card Octane", "SBI Card", "RuPay",
			rewards.Rules{
				rewards.CategoryDining: 0.025, rewards.CategoryGroceries: 0.0025,
				rewards.CategoryShopping: 0.0025, rewards.CategoryTravel: 0.0025,
				rewards.CategoryFuel: 0.0725, rewards.CategoryUtilities: 0.0025,
				rewards.CategoryEntertainment: 0.025, rewards.CategoryOthers: 0.0025,
			},
		},
	}

	entries := make([]Entry, 0, len(cards))
	for _, c := range cards {
		entries = append(entries, Entry{
			ID:        c.id,
			CardName:  c.name,
			Issuer:    c.issuer,
			Network:   c.network,
			Rules:     c.rules,
			Source:    SourceManualVerified,
			Status:    StatusVerified,
			CreatedAt: seedTime,
			UpdatedAt: seedTime,
		})
	}
	return entries
}
