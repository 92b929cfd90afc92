// internal/domain/catalog/entity.go
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices travel as JSON numbers, matching the upstream API contract
	decimal.MarshalJSONWithoutQuotes = true
}

// Game represents a catalog entry for a game
type Game struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	IsPopular   bool           `gorm:"default:false;index" json:"is_popular"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category groups products of one game
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	GameID      uint           `gorm:"not null;index" json:"game_id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product is a purchasable in-game item
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	GameID       uint            `gorm:"not null;index" json:"game_id"`
	CategoryID   uint            `gorm:"not null;index" json:"category_id"`
	Name         string          `gorm:"not null;size:255" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ImageURL     string          `gorm:"size:500" json:"image_url"`
	Rating       float64         `gorm:"default:0" json:"rating"`
	ReviewsCount int             `gorm:"default:0" json:"reviews_count"`
	IsAvailable  bool            `gorm:"default:true" json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"-"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides
func (Game) TableName() string     { return "games" }
func (Category) TableName() string { return "categories" }
func (Product) TableName() string  { return "products" }

// SortKey names the field products are ordered by
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByRating    SortKey = "rating"
	SortByCreatedAt SortKey = "created_at"
)

// SortOrder is asc or desc
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterOptions are the product list query parameters understood by the API
type FilterOptions struct {
	CategoryID uint      `form:"category_id" json:"category_id,omitempty"`
	MinPrice   string    `form:"min_price" json:"min_price,omitempty"`
	MaxPrice   string    `form:"max_price" json:"max_price,omitempty"`
	Search     string    `form:"search" json:"search,omitempty"`
	SortBy     SortKey   `form:"sort_by" json:"sort_by,omitempty"`
	SortOrder  SortOrder `form:"sort_order" json:"sort_order,omitempty"`
	Page       int       `form:"page" json:"page,omitempty"`
	Limit      int       `form:"limit" json:"limit,omitempty"`
}

// Values encodes the non-empty options as URL query parameters
func (f FilterOptions) Values() url.Values {
	values := url.Values{}
	if f.CategoryID > 0 {
		values.Set("category_id", strconv.FormatUint(uint64(f.CategoryID), 10))
	}
	if f.MinPrice != "" {
		values.Set("min_price", f.MinPrice)
	}
	if f.MaxPrice != "" {
		values.Set("max_price", f.MaxPrice)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.SortBy != "" {
		values.Set("sort_by", string(f.SortBy))
	}
	if f.SortOrder != "" {
		values.Set("sort_order", string(f.SortOrder))
	}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	return values
}

// PriceBounds parses the optional price bounds; an empty bound is unbounded
func (f FilterOptions) PriceBounds() (min, max *decimal.Decimal, err error) {
	if min, err = parseBound(f.MinPrice); err != nil {
		return nil, nil, fmt.Errorf("invalid min_price: %w", err)
	}
	if max, err = parseBound(f.MaxPrice); err != nil {
		return nil, nil, fmt.Errorf("invalid max_price: %w", err)
	}
	return min, max, nil
}

func parseBound(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Query converts the options into a client-side filter query
func (f FilterOptions) Query() (Query, error) {
	min, max, err := f.PriceBounds()
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Search:    f.Search,
		MinPrice:  min,
		MaxPrice:  max,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
	}
	if f.CategoryID > 0 {
		categoryID := f.CategoryID
		q.CategoryID = &categoryID
	}
	return q, nil
}
