package storefront

import (
	"errors"
	"slices"
)

// AllCategories is the filter sentinel meaning "no category restriction"
const AllCategories = "All"

var ErrUnknownCategory = errors.New("unknown category")

var (
	filterCategories = []string{
		AllCategories,
		"Apparel",
		"Electronics",
		"Footwear",
		"Accessories",
		"Home & Kitchen",
	}

	// Categories a new product can be created in
	formCategories = []string{
		"Apparel",
		"Electronics",
		"Footwear",
		"Accessories",
	}
)

// Categories returns the fixed category filter, "All" first.
func Categories() []string {
	return slices.Clone(filterCategories)
}

// FormCategories returns the categories offered by the creation form.
func FormCategories() []string {
	return slices.Clone(formCategories)
}

func IsCategory(c string) bool {
	return slices.Contains(filterCategories, c)
}

// NormalizeCategory maps unknown or empty filters to "All".
func NormalizeCategory(c string) (string, bool) {
	if IsCategory(c) {
		return c, true
	}
	return AllCategories, c == ""
}
