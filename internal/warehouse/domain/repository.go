package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]ScrapedProduct, error)
	FindLatestBatchDate(ctx context.Context, db *gorm.DB) (*time.Time, error)
}
