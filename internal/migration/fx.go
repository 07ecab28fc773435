package migration

import (
	accountdomain "github.com/kickwatch/alerts-service/internal/account/domain"
	alertdomain "github.com/kickwatch/alerts-service/internal/alert/domain"
	"github.com/kickwatch/alerts-service/internal/config"
	warehousedomain "github.com/kickwatch/alerts-service/internal/warehouse/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres. Sqlite dev setups
		// derive the schema from the models instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&alertdomain.Alert{},
				&accountdomain.Account{},
				&warehousedomain.ScrapedProduct{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		return RunMigrations(sqlDB)
	}),
)
