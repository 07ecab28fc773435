package digest

import (
	"github.com/kickwatch/alerts-service/internal/suppression"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.digest",
	fx.Provide(NewRenderer),
	fx.Provide(func(c *suppression.Checker) SuppressionChecker { return c }),
	fx.Provide(New),
)
