package suppression

import (
	"context"

	"github.com/kickwatch/alerts-service/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("suppression",
	fx.Provide(NewRedisClient),
	fx.Provide(New),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				_ = ctx
				return client.Close()
			},
		})
	}

	return client, nil
}
