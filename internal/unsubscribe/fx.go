package unsubscribe

import "go.uber.org/fx"

var Module = fx.Module("unsubscribe",
	fx.Provide(New),
)
