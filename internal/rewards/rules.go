package rewards

import "fmt"

// Category is one spend category from the closed classification set.
type Category string

const (
	CategoryDining        Category = "dining"
	CategoryGroceries     Category = "groceries"
	CategoryShopping      Category = "shopping"
	CategoryTravel        Category = "travel"
	CategoryFuel          Category = "fuel"
	CategoryUtilities     Category = "utilities"
	CategoryEntertainment Category = "entertainment"
	CategoryOthers        Category = "others"
)

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	return []Category{
		CategoryDining,
		CategoryGroceries,
		CategoryShopping,
		CategoryTravel,
		CategoryFuel,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryOthers,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryDining, CategoryGroceries, CategoryShopping, CategoryTravel,
		CategoryFuel, CategoryUtilities, CategoryEntertainment, CategoryOthers:
		return true
	default:
		return false
	}
}

// Rules maps each spend category to a fractional reward rate (0.05 = 5%).
type Rules map[Category]float64

// Validate requires every category to be present with a non-negative rate.
// Catalog data may overstate a rate, so no upper bound is enforced here.
func (r Rules) Validate() error {
	for _, cat := range Categories() {
		rate, ok := r[cat]
		if !ok {
			return fmt.Errorf("reward rules missing category %q", cat)
		}
		if rate < 0 {
			return fmt.Errorf("reward rate for %q must not be negative", cat)
		}
	}
	return nil
}

// Rate returns the reward rate for cat, or 0 when the category is absent.
func (r Rules) Rate(cat Category) float64 {
	return r[cat]
}
