package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type AlertStatus string

const (
	AlertStatusActive    AlertStatus = "ACTIVE"
	AlertStatusTriggered AlertStatus = "TRIGGERED"
	AlertStatusPaused    AlertStatus = "PAUSED"
)

const (
	ChannelEmail     = "EMAIL"
	ChannelAppWidget = "APP_WIDGET"
)

// Alert is a user's price watch on a single product. One row per
// (product_id, user_id) pair.
type Alert struct {
	ProductID string `gorm:"column:product_id;primaryKey"`
	UserID    string `gorm:"column:user_id;primaryKey;index:idx_alerts_user"`

	DesiredPrice   *float64                    `gorm:"column:desired_price"`
	DesiredPercent *float64                    `gorm:"column:desired_percent"`
	AlertIfSale    bool                        `gorm:"column:alert_if_sale;not null;default:false"`
	Channels       datatypes.JSONSlice[string] `gorm:"column:channels;type:jsonb"`
	Status         AlertStatus                 `gorm:"column:status;type:text;not null;default:ACTIVE"`

	ProductName          string   `gorm:"column:product_name"`
	ProductBrand         string   `gorm:"column:product_brand"`
	ProductImage         string   `gorm:"column:product_image"`
	ProductImageURL      string   `gorm:"column:product_image_url"`
	ProductURL           string   `gorm:"column:product_url"`
	ProductOriginalPrice *float64 `gorm:"column:product_original_price"`
	ProductCurrentPrice  *float64 `gorm:"column:product_current_price"`

	LastTriggeredAt *time.Time `gorm:"column:last_triggered_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Alert) TableName() string { return "alerts" }

// WantsEmail reports whether the alert subscribes to the email channel.
// Channel values are matched case-insensitively.
func (a *Alert) WantsEmail() bool {
	if a == nil {
		return false
	}
	for _, ch := range a.Channels {
		if strings.EqualFold(strings.TrimSpace(ch), ChannelEmail) {
			return true
		}
	}
	return false
}
