package domain

import (
	"context"

	"gorm.io/gorm"
)

type SearchFilter struct {
	Query string
	Brand string
	Page  int
	Size  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	Find(ctx context.Context, db *gorm.DB, userID, productID string) (*Alert, error)
	Search(ctx context.Context, db *gorm.DB, userID string, filter SearchFilter) ([]Alert, int64, error)
	FindActiveByProduct(ctx context.Context, db *gorm.DB, productID string, limit int) ([]Alert, error)
	Update(ctx context.Context, db *gorm.DB, alert *Alert) error
	UpdateTriggered(ctx context.Context, db *gorm.DB, alerts []*Alert) error
	Delete(ctx context.Context, db *gorm.DB, userID, productID string) error
}
