package service

import (
	"context"
	"strings"

	"github.com/kickwatch/alerts-service/internal/alert/domain"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 8
	maxPageSize     = 50
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("alert.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req domain.CreateRequest) (*domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, domain.ErrInvalidProduct
	}

	if err := domain.ValidateTriggers(req.DesiredPrice, req.DesiredPercent, req.AlertIfSale, req.ProductOriginalPrice, req.ProductCurrentPrice); err != nil {
		return nil, err
	}
	channels, err := domain.NormalizeChannels(req.Channels)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	record := &domain.Alert{
		ProductID:            productID,
		UserID:               userID,
		DesiredPrice:         req.DesiredPrice,
		DesiredPercent:       req.DesiredPercent,
		AlertIfSale:          req.AlertIfSale,
		Channels:             datatypes.JSONSlice[string](channels),
		Status:               domain.AlertStatusActive,
		ProductName:          strings.TrimSpace(req.ProductName),
		ProductBrand:         strings.TrimSpace(req.ProductBrand),
		ProductImage:         strings.TrimSpace(req.ProductImage),
		ProductImageURL:      strings.TrimSpace(req.ProductImageURL),
		ProductURL:           strings.TrimSpace(req.ProductURL),
		ProductOriginalPrice: req.ProductOriginalPrice,
		ProductCurrentPrice:  req.ProductCurrentPrice,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}

	s.log.Info("alert.created",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
	)

	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, userID, productID string) (*domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidProduct
	}

	item, err := s.repo.Find(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, userID string, req domain.ListRequest) (*domain.ListResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	filter := domain.SearchFilter{
		Query: strings.TrimSpace(req.Query),
		Brand: strings.TrimSpace(req.Brand),
		Page:  req.Page,
		Size:  req.Size,
	}
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.Size <= 0 {
		filter.Size = defaultPageSize
	}
	if filter.Size > maxPageSize {
		filter.Size = maxPageSize
	}

	items, total, err := s.repo.Search(ctx, s.db, userID, filter)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{
		Items:      make([]domain.Response, 0, len(items)),
		TotalCount: total,
		Page:       filter.Page,
		Size:       filter.Size,
	}
	for i := range items {
		resp.Items = append(resp.Items, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, userID, productID string, req domain.UpdateRequest) (*domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidProduct
	}

	item, err := s.repo.Find(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.DesiredPrice != nil {
		item.DesiredPrice = req.DesiredPrice
	}
	if req.DesiredPercent != nil {
		item.DesiredPercent = req.DesiredPercent
	}
	if req.AlertIfSale != nil {
		item.AlertIfSale = *req.AlertIfSale
	}
	if req.Channels != nil {
		channels, err := domain.NormalizeChannels(*req.Channels)
		if err != nil {
			return nil, err
		}
		item.Channels = datatypes.JSONSlice[string](channels)
	}
	if req.ProductName != nil {
		item.ProductName = strings.TrimSpace(*req.ProductName)
	}
	if req.ProductBrand != nil {
		item.ProductBrand = strings.TrimSpace(*req.ProductBrand)
	}
	if req.ProductImage != nil {
		item.ProductImage = strings.TrimSpace(*req.ProductImage)
	}
	if req.ProductImageURL != nil {
		item.ProductImageURL = strings.TrimSpace(*req.ProductImageURL)
	}
	if req.ProductURL != nil {
		item.ProductURL = strings.TrimSpace(*req.ProductURL)
	}
	if req.ProductOriginalPrice != nil {
		item.ProductOriginalPrice = req.ProductOriginalPrice
	}
	if req.ProductCurrentPrice != nil {
		item.ProductCurrentPrice = req.ProductCurrentPrice
	}

	if err := domain.ValidateTriggers(item.DesiredPrice, item.DesiredPercent, item.AlertIfSale, item.ProductOriginalPrice, item.ProductCurrentPrice); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// ResetStatus rearms a triggered alert so the next run can fire it again.
func (s *Service) ResetStatus(ctx context.Context, userID, productID string) (*domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidProduct
	}

	item, err := s.repo.Find(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Status = domain.AlertStatusActive
	item.LastTriggeredAt = nil
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, userID, productID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrInvalidProduct
	}
	return s.repo.Delete(ctx, s.db, userID, productID)
}

func (s *Service) toResponse(a *domain.Alert) domain.Response {
	return domain.Response{
		ProductID:            a.ProductID,
		UserID:               a.UserID,
		DesiredPrice:         a.DesiredPrice,
		DesiredPercent:       a.DesiredPercent,
		AlertIfSale:          a.AlertIfSale,
		Channels:             []string(a.Channels),
		Status:               a.Status,
		ProductName:          a.ProductName,
		ProductBrand:         a.ProductBrand,
		ProductImage:         a.ProductImage,
		ProductImageURL:      a.ProductImageURL,
		ProductURL:           a.ProductURL,
		ProductOriginalPrice: a.ProductOriginalPrice,
		ProductCurrentPrice:  a.ProductCurrentPrice,
		LastTriggeredAt:      a.LastTriggeredAt,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
