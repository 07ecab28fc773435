package alert

import (
	"github.com/kickwatch/alerts-service/internal/alert/repository"
	"github.com/kickwatch/alerts-service/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
