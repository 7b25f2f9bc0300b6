package models

import "strings"

// Category is the topical classification of a page. The set is closed:
// every value handed out by this package is one of Categories.
type Category string

const (
	CategoryShopping      Category = "shopping"
	CategoryLearning      Category = "learning"
	CategoryFinance       Category = "finance"
	CategorySocial        Category = "social"
	CategoryProductivity  Category = "productivity"
	CategoryResearch      Category = "research"
	CategoryEntertainment Category = "entertainment"
	CategoryNews          Category = "news"
	CategoryOther         Category = "other"
)

// Categories lists the closed category set in declaration order.
// Declaration order breaks ties in keyword scoring.
var Categories = []Category{
	CategoryShopping,
	CategoryLearning,
	CategoryFinance,
	CategorySocial,
	CategoryProductivity,
	CategoryResearch,
	CategoryEntertainment,
	CategoryNews,
	CategoryOther,
}

// NormalizeCategory maps any string onto the closed set, "other" when unknown.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is the human readable name shown on badges and dashboards.
func (c Category) Label() string {
	switch NormalizeCategory(string(c)) {
	case CategoryShopping:
		return "Shopping"
	case CategoryLearning:
		return "Learning"
	case CategoryFinance:
		return "Finance"
	case CategorySocial:
		return "Social & Community"
	case CategoryProductivity:
		return "Productivity"
	case CategoryResearch:
		return "Research"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryNews:
		return "News & Updates"
	default:
		return "Other"
	}
}

// CategorySource records who decided a snapshot's category.
type CategorySource string

const (
	SourceHeuristic CategorySource = "heuristic"
	SourceAI        CategorySource = "ai"
)
