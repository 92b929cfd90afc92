// internal/domain/promo/service.go
package promo

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles promo code lookups and redemption
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new promo service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// ApplyRequest represents a promo code check
type ApplyRequest struct {
	Code string `json:"code" binding:"required"`
}

// Apply looks up a code and verifies it can be used right now
func (s *Service) Apply(code string) (*PromoCode, error) {
	p, err := s.find(s.db, code)
	if err != nil {
		return nil, err
	}
	if err := p.CheckUsable(s.now()); err != nil {
		return nil, err
	}
	return p, nil
}

// Redeem locks the code inside tx and counts one use
func (s *Service) Redeem(tx *gorm.DB, code string) (*PromoCode, error) {
	p, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), code)
	if err != nil {
		return nil, err
	}
	if err := p.CheckUsable(s.now()); err != nil {
		return nil, err
	}

	if err := tx.Model(p).Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to redeem promo code: %w", err)
	}
	p.UsedCount++

	return p, nil
}

func (s *Service) find(db *gorm.DB, code string) (*PromoCode, error) {
	var p PromoCode
	if err := db.Where("code = ?", NormalizeCode(code)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve promo code: %w", err)
	}
	return &p, nil
}
