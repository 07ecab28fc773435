package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kickwatch/alerts-service/internal/account"
	"github.com/kickwatch/alerts-service/internal/alert"
	"github.com/kickwatch/alerts-service/internal/clock"
	"github.com/kickwatch/alerts-service/internal/config"
	"github.com/kickwatch/alerts-service/internal/digest"
	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	"github.com/kickwatch/alerts-service/internal/migration"
	"github.com/kickwatch/alerts-service/internal/observability"
	"github.com/kickwatch/alerts-service/internal/providers/email"
	"github.com/kickwatch/alerts-service/internal/scheduler"
	"github.com/kickwatch/alerts-service/internal/suppression"
	"github.com/kickwatch/alerts-service/internal/unsubscribe"
	"github.com/kickwatch/alerts-service/internal/warehouse"
	"github.com/kickwatch/alerts-service/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		alert.Module,
		account.Module,
		warehouse.Module,
		emailcrypto.Module,
		suppression.Module,
		unsubscribe.Module,
		email.Module,
		digest.Module,

		// No server module; this process only runs the cron.
		scheduler.CronModule,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
