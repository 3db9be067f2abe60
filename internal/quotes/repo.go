package quotes

import (
	"context"

	"github.com/frimousse/patisserie-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles quote persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to quote operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new quote row. The store assigns id and created_at, so
// callers must not assume either field before this returns.
func (r *Repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// FindByID loads a quote by its numeric id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}
