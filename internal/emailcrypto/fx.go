package emailcrypto

import "go.uber.org/fx"

var Module = fx.Module("emailcrypto",
	fx.Provide(New),
)
