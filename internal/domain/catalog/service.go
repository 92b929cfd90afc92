// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a game, category or product does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidFilter is returned for malformed list filters
	ErrInvalidFilter = errors.New("invalid filter")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service handles catalog persistence for the upstream API
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GameRequest represents game creation and update data
type GameRequest struct {
	Name        string `json:"name" binding:"required"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	IsPopular   bool   `json:"is_popular"`
}

// CategoryRequest represents category creation and update data
type CategoryRequest struct {
	GameID      uint   `json:"game_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ProductRequest represents product creation data
type ProductRequest struct {
	GameID      uint            `json:"game_id" binding:"required"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	IsAvailable *bool           `json:"is_available"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	IsAvailable *bool            `json:"is_available"`
}

// GetGames retrieves all games ordered by name
func (s *Service) GetGames() ([]Game, error) {
	var games []Game
	if err := s.db.Order("name ASC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve games: %w", err)
	}
	return games, nil
}

// GetPopularGames retrieves games flagged as popular
func (s *Service) GetPopularGames() ([]Game, error) {
	var games []Game
	if err := s.db.Where("is_popular = ?", true).Order("name ASC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve popular games: %w", err)
	}
	return games, nil
}

// GetGame retrieves a single game by ID
func (s *Service) GetGame(id uint) (*Game, error) {
	var game Game
	if err := s.db.First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve game: %w", err)
	}
	return &game, nil
}

// CreateGame creates a new game
func (s *Service) CreateGame(req *GameRequest) (*Game, error) {
	game := Game{
		Name:        strings.TrimSpace(req.Name),
		ImageURL:    req.ImageURL,
		Description: req.Description,
		IsPopular:   req.IsPopular,
	}
	if err := s.db.Create(&game).Error; err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

// UpdateGame replaces the editable fields of a game
func (s *Service) UpdateGame(id uint, req *GameRequest) (*Game, error) {
	game, err := s.GetGame(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"image_url":   req.ImageURL,
		"description": req.Description,
		"is_popular":  req.IsPopular,
	}
	if err := s.db.Model(game).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return s.GetGame(id)
}

// DeleteGame soft deletes a game together with its categories and products
func (s *Service) DeleteGame(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&Game{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete game: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("game %d: %w", id, ErrNotFound)
		}
		if err := tx.Where("game_id = ?", id).Delete(&Category{}).Error; err != nil {
			return fmt.Errorf("failed to delete game categories: %w", err)
		}
		if err := tx.Where("game_id = ?", id).Delete(&Product{}).Error; err != nil {
			return fmt.Errorf("failed to delete game products: %w", err)
		}
		return nil
	})
}

// GetCategories retrieves the categories of a game
func (s *Service) GetCategories(gameID uint) ([]Category, error) {
	var categories []Category
	if err := s.db.Where("game_id = ?", gameID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a new category inside an existing game
func (s *Service) CreateCategory(req *CategoryRequest) (*Category, error) {
	if _, err := s.GetGame(req.GameID); err != nil {
		return nil, err
	}

	category := Category{
		GameID:      req.GameID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// UpdateCategory replaces the editable fields of a category
func (s *Service) UpdateCategory(id uint, req *CategoryRequest) (*Category, error) {
	var category Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	}
	if req.GameID > 0 {
		updates["game_id"] = req.GameID
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.db.First(&category, id)
	return &category, nil
}

// DeleteCategory soft deletes a category
func (s *Service) DeleteCategory(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

// ProductPage is one page of a filtered product list
type ProductPage struct {
	Products []Product
	Total    int64
	Page     int
	Limit    int
}

// TotalPages returns the number of pages needed for the whole list
func (p *ProductPage) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// GetProducts retrieves a game's products with filtering and pagination
func (s *Service) GetProducts(gameID uint, opts FilterOptions) (*ProductPage, error) {
	minPrice, maxPrice, err := opts.PriceBounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Where("game_id = ?", gameID)

	if opts.CategoryID > 0 {
		query = query.Where("category_id = ?", opts.CategoryID)
	}
	if opts.Search != "" {
		search := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	if minPrice != nil {
		query = query.Where("price >= ?", *minPrice)
	}
	if maxPrice != nil {
		query = query.Where("price <= ?", *maxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page, limit := normalizePage(opts.Page, opts.Limit)

	query = query.Order(buildOrderClause(opts.SortBy, opts.SortOrder))
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductsByIDs retrieves the products with the given IDs, keyed by ID
func (s *Service) GetProductsByIDs(ids []uint) (map[uint]Product, error) {
	var products []Product
	if err := s.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	byID := make(map[uint]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// CreateProduct creates a new product inside an existing category
func (s *Service) CreateProduct(req *ProductRequest) (*Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	var category Category
	if err := s.db.Where("id = ? AND game_id = ?", req.CategoryID, req.GameID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d of game %d: %w", req.CategoryID, req.GameID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	product := Product{
		GameID:      req.GameID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative")
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// buildOrderClause builds ORDER BY clause for sorting
func buildOrderClause(sortBy SortKey, sortOrder SortOrder) string {
	validSortFields := map[SortKey]bool{
		SortByName:      true,
		SortByPrice:     true,
		SortByRating:    true,
		SortByCreatedAt: true,
	}

	if !validSortFields[sortBy] {
		sortBy = SortByCreatedAt
	}

	if sortOrder != SortAsc && sortOrder != SortDesc {
		sortOrder = SortDesc
		if sortBy == SortByName {
			sortOrder = SortAsc
		}
	}

	return fmt.Sprintf("%s %s, id ASC", sortBy, sortOrder)
}
