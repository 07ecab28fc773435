package repository

import (
	"context"

	"github.com/kickwatch/alerts-service/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repo) FindByEmailHashes(ctx context.Context, db *gorm.DB, hashes []string) (*domain.Account, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	var a domain.Account
	err := db.WithContext(ctx).
		Where("email_hash IN ?", hashes).
		Take(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
