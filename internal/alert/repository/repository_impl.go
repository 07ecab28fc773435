package repository

import (
	"context"
	"strings"

	"github.com/kickwatch/alerts-service/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID, productID string) (*domain.Alert, error) {
	var a domain.Alert
	err := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Take(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repo) Search(ctx context.Context, db *gorm.DB, userID string, filter domain.SearchFilter) ([]domain.Alert, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("user_id = ?", userID)

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where("LOWER(product_name) LIKE ? OR LOWER(product_brand) LIKE ?", like, like)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		stmt = stmt.Where("LOWER(product_brand) = ?", strings.ToLower(brand))
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Alert
	err := stmt.
		Order("created_at DESC").
		Offset(filter.Page * filter.Size).
		Limit(filter.Size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) FindActiveByProduct(ctx context.Context, db *gorm.DB, productID string, limit int) ([]domain.Alert, error) {
	stmt := db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, domain.AlertStatusActive)
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	var items []domain.Alert
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	if alert == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("user_id = ? AND product_id = ?", alert.UserID, alert.ProductID).
		Select("*").
		Omit("created_at").
		Updates(alert).Error
}

func (r *repo) UpdateTriggered(ctx context.Context, db *gorm.DB, alerts []*domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, alert := range alerts {
			if err := r.Update(ctx, tx, alert); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, productID string) error {
	result := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.Alert{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
