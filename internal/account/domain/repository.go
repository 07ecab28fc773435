package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*Account, error)
	FindByEmailHashes(ctx context.Context, db *gorm.DB, hashes []string) (*Account, error)
}
