package store

import (
	"github.com/shopspring/decimal"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/theme"
)

// CartItem pairs a product snapshot with a quantity in [1, MaxQuantity]
type CartItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price times quantity
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// State is the whole session state. Slices and the user pointer are replaced,
// never modified in place, so copies of State share them safely.
type State struct {
	User            *user.User         `json:"user"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	IsLoading       bool               `json:"isLoading"`
	Theme           theme.Theme        `json:"theme"`
	Games           []catalog.Game     `json:"games"`
	PopularGames    []catalog.Game     `json:"popularGames"`
	Products        []catalog.Product  `json:"products"`
	Categories      []catalog.Category `json:"categories"`
	Orders          []order.Order      `json:"orders"`
	Cart            []CartItem         `json:"cart"`
	ReloadRequired  bool               `json:"reloadRequired"`
}

// Persisted is the subset of State that survives reloads
type Persisted struct {
	Theme           theme.Theme `json:"theme"`
	Cart            []CartItem  `json:"cart"`
	User            *user.User  `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

func (s *State) persisted() Persisted {
	return Persisted{
		Theme:           s.Theme,
		Cart:            s.Cart,
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
	}
}

// CartTotal returns the sum of price times quantity over the cart
func (s State) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Cart {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CartItemCount returns the sum of quantities in the cart
func (s State) CartItemCount() int {
	count := 0
	for _, item := range s.Cart {
		count += item.Quantity
	}
	return count
}

// CartQuantity returns the quantity of a product in the cart, zero if absent
func (s State) CartQuantity(productID uint) int {
	for _, item := range s.Cart {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// IsAdmin reports whether the signed in user has the admin flag
func (s State) IsAdmin() bool {
	return s.IsAuthenticated && s.User != nil && s.User.IsAdmin
}
