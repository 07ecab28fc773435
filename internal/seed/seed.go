package seed

import (
	"context"
	"errors"
	"time"

	accountdomain "github.com/kickwatch/alerts-service/internal/account/domain"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	"github.com/kickwatch/alerts-service/internal/config"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoUserID = "demo-user"
	demoEmail  = "demo@kickwatch.ph"
)

var Module = fx.Module("seed",
	fx.Invoke(runDemoSeed),
)

func runDemoSeed(cfg config.Config, db *gorm.DB, codec *emailcrypto.Codec, log *zap.Logger) error {
	if cfg.Environment != "development" {
		return nil
	}
	if err := EnsureDemoData(db, codec); err != nil {
		return err
	}
	log.Info("seed.demo_data_ready", zap.String("user_id", demoUserID))
	return nil
}

// EnsureDemoData inserts a demo account, one alert, and a scraped row
// for today so a fresh development environment has something to run
// the pipeline against. Existing rows are left alone.
func EnsureDemoData(db *gorm.DB, codec *emailcrypto.Codec) error {
	if db == nil || codec == nil {
		return errors.New("seed requires a database handle and email codec")
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDemoAccount(ctx, tx, codec, now); err != nil {
			return err
		}
		if err := ensureDemoAlert(ctx, tx, now); err != nil {
			return err
		}
		return ensureDemoRow(ctx, tx, now)
	})
}

func ensureDemoAccount(ctx context.Context, tx *gorm.DB, codec *emailcrypto.Codec, now time.Time) error {
	var account accountdomain.Account
	err := tx.WithContext(ctx).Where("user_id = ?", demoUserID).First(&account).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	enc, err := codec.Encrypt(demoEmail)
	if err != nil {
		return err
	}
	account = accountdomain.Account{
		UserID:    demoUserID,
		EmailEnc:  enc,
		EmailHash: codec.Hash(demoEmail),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&account).Error
}

func ensureDemoAlert(ctx context.Context, tx *gorm.DB, now time.Time) error {
	var alert alertdomain.Alert
	err := tx.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", "demo-dunk-low", demoUserID).
		First(&alert).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	desired := 5000.0
	alert = alertdomain.Alert{
		ProductID:    "demo-dunk-low",
		UserID:       demoUserID,
		DesiredPrice: &desired,
		Channels:     datatypes.JSONSlice[string]{alertdomain.ChannelEmail, alertdomain.ChannelAppWidget},
		Status:       alertdomain.AlertStatusActive,
		ProductName:  "Nike Dunk Low Panda",
		ProductBrand: "Nike",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&alert).Error
}

func ensureDemoRow(ctx context.Context, tx *gorm.DB, now time.Time) error {
	var row warehousedomain.ScrapedProduct
	err := tx.WithContext(ctx).Where("dwid = ?", "demo-batch-1").First(&row).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sale := 4595.0
	original := 5995.0
	row = warehousedomain.ScrapedProduct{
		DWID:          "demo-batch-1",
		ProductID:     "demo-dunk-low",
		Year:          now.Year(),
		Month:         int(now.Month()),
		Day:           now.Day(),
		Brand:         "Nike",
		Title:         "Nike Dunk Low Panda",
		URL:           "https://shop.example/dunk-low-panda",
		PriceSale:     &sale,
		PriceOriginal: &original,
	}
	return tx.WithContext(ctx).Create(&row).Error
}
