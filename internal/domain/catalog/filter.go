package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Query narrows and orders an already fetched product list
type Query struct {
	Search     string
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     SortKey
	SortOrder  SortOrder
}

// FilterProducts returns the products matching q in the requested order.
// The input slice is not modified.
func FilterProducts(products []Product, q Query) []Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" && !containsFold(p.Name, search) && !containsFold(p.Description, search) {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		result = append(result, p)
	}

	compare := productComparator(q.SortBy)
	if q.SortOrder == SortDesc {
		sort.SliceStable(result, func(i, j int) bool { return compare(result[j], result[i]) < 0 })
	} else {
		sort.SliceStable(result, func(i, j int) bool { return compare(result[i], result[j]) < 0 })
	}

	return result
}

// FilterGames returns the games whose name or description contains search
func FilterGames(games []Game, search string) []Game {
	search = strings.ToLower(strings.TrimSpace(search))

	result := make([]Game, 0, len(games))
	for _, g := range games {
		if search == "" || containsFold(g.Name, search) || containsFold(g.Description, search) {
			result = append(result, g)
		}
	}
	return result
}

func productComparator(key SortKey) func(a, b Product) int {
	switch key {
	case SortByPrice:
		return func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case SortByRating:
		return func(a, b Product) int { return compareFloat(a.Rating, b.Rating) }
	case SortByCreatedAt:
		return func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		// collate.Collator keeps internal buffers, one per sort
		collator := collate.New(language.Russian, collate.IgnoreCase)
		return func(a, b Product) int { return collator.CompareString(a.Name, b.Name) }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(text, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(text), lowerNeedle)
}
