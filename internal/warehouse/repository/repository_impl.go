package repository

import (
	"context"
	"time"

	"github.com/kickwatch/alerts-service/internal/warehouse/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]domain.ScrapedProduct, error) {
	var items []domain.ScrapedProduct
	err := db.WithContext(ctx).Raw(
		`SELECT dwid, id, year, month, day, brand, title, subtitle, url, image, price_sale, price_original
		 FROM scraped_products
		 WHERE year = ? AND month = ? AND day = ?`,
		date.Year(),
		int(date.Month()),
		date.Day(),
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindLatestBatchDate(ctx context.Context, db *gorm.DB) (*time.Time, error) {
	var row struct {
		Year  *int
		Month *int
		Day   *int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT year, month, day
		 FROM scraped_products
		 ORDER BY year DESC, month DESC, day DESC
		 LIMIT 1`,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Year == nil || row.Month == nil || row.Day == nil {
		return nil, nil
	}
	latest := time.Date(*row.Year, time.Month(*row.Month), *row.Day, 0, 0, 0, 0, time.UTC)
	return &latest, nil
}
