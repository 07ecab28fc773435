package domain

import "time"

// Account stores a user's contact email, encrypted at rest with a
// deterministic hash column for lookups.
type Account struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	EmailEnc  string    `gorm:"column:email_enc;not null"`
	EmailHash string    `gorm:"column:email_hash;not null;index:idx_accounts_email_hash"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string { return "accounts" }
