package suppression

import (
	"context"

	"github.com/kickwatch/alerts-service/internal/emailcrypto"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const suppressionSetKey = "suppression:emails"

type Params struct {
	fx.In

	Client *redis.Client
	Codec  *emailcrypto.Codec
	Log    *zap.Logger
}

// Checker answers whether an email is on the suppression list kept in
// redis. The set stores lookup hashes, never plaintext addresses.
type Checker struct {
	client *redis.Client
	codec  *emailcrypto.Codec
	log    *zap.Logger
}

func New(p Params) *Checker {
	return &Checker{
		client: p.Client,
		codec:  p.Codec,
		log:    p.Log.Named("suppression"),
	}
}

// IsSuppressed reports whether the email is suppressed. Redis failures
// fail open so a cache outage never blocks the whole digest run.
func (c *Checker) IsSuppressed(ctx context.Context, email string) bool {
	if c == nil || c.client == nil {
		return false
	}
	hash := c.codec.Hash(email)
	suppressed, err := c.client.SIsMember(ctx, suppressionSetKey, hash).Result()
	if err != nil {
		c.log.Warn("suppression check failed",
			zap.String("email", emailcrypto.Mask(email)),
			zap.Error(err),
		)
		return false
	}
	return suppressed
}

// Add puts an email on the suppression list.
func (c *Checker) Add(ctx context.Context, email string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.SAdd(ctx, suppressionSetKey, c.codec.Hash(email)).Err()
}
