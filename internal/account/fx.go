package account

import (
	"github.com/kickwatch/alerts-service/internal/account/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("account",
	fx.Provide(repository.Provide),
)
