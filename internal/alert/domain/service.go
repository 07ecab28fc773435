package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) (*Response, error)
	Get(ctx context.Context, userID, productID string) (*Response, error)
	List(ctx context.Context, userID string, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, userID, productID string, req UpdateRequest) (*Response, error)
	ResetStatus(ctx context.Context, userID, productID string) (*Response, error)
	Delete(ctx context.Context, userID, productID string) error
}

type CreateRequest struct {
	ProductID      string   `json:"product_id"`
	DesiredPrice   *float64 `json:"desired_price"`
	DesiredPercent *float64 `json:"desired_percent"`
	AlertIfSale    bool     `json:"alert_if_sale"`
	Channels       []string `json:"channels"`

	ProductName          string   `json:"product_name"`
	ProductBrand         string   `json:"product_brand"`
	ProductImage         string   `json:"product_image"`
	ProductImageURL      string   `json:"product_image_url"`
	ProductURL           string   `json:"product_url"`
	ProductOriginalPrice *float64 `json:"product_original_price"`
	ProductCurrentPrice  *float64 `json:"product_current_price"`
}

type UpdateRequest struct {
	DesiredPrice   *float64  `json:"desired_price,omitempty"`
	DesiredPercent *float64  `json:"desired_percent,omitempty"`
	AlertIfSale    *bool     `json:"alert_if_sale,omitempty"`
	Channels       *[]string `json:"channels,omitempty"`

	ProductName          *string  `json:"product_name,omitempty"`
	ProductBrand         *string  `json:"product_brand,omitempty"`
	ProductImage         *string  `json:"product_image,omitempty"`
	ProductImageURL      *string  `json:"product_image_url,omitempty"`
	ProductURL           *string  `json:"product_url,omitempty"`
	ProductOriginalPrice *float64 `json:"product_original_price,omitempty"`
	ProductCurrentPrice  *float64 `json:"product_current_price,omitempty"`
}

type ListRequest struct {
	Query string
	Brand string
	Page  int
	Size  int
}

type ListResponse struct {
	Items      []Response `json:"items"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
}

type Response struct {
	ProductID      string      `json:"product_id"`
	UserID         string      `json:"user_id"`
	DesiredPrice   *float64    `json:"desired_price,omitempty"`
	DesiredPercent *float64    `json:"desired_percent,omitempty"`
	AlertIfSale    bool        `json:"alert_if_sale"`
	Channels       []string    `json:"channels"`
	Status         AlertStatus `json:"status"`

	ProductName          string   `json:"product_name,omitempty"`
	ProductBrand         string   `json:"product_brand,omitempty"`
	ProductImage         string   `json:"product_image,omitempty"`
	ProductImageURL      string   `json:"product_image_url,omitempty"`
	ProductURL           string   `json:"product_url,omitempty"`
	ProductOriginalPrice *float64 `json:"product_original_price,omitempty"`
	ProductCurrentPrice  *float64 `json:"product_current_price,omitempty"`

	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrNoTrigger       = errors.New("no_trigger")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidPercent  = errors.New("invalid_percent")
	ErrMissingOriginal = errors.New("missing_original_price")
	ErrInvalidChannel  = errors.New("invalid_channel")
	ErrDuplicate       = errors.New("duplicate_alert")
	ErrNotFound        = errors.New("not_found")
)
