package warehouse

import (
	"github.com/kickwatch/alerts-service/internal/warehouse/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("warehouse",
	fx.Provide(repository.Provide),
)
