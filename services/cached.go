package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/petcare-reservation/cache"
	"github.com/yeremiapane/petcare-reservation/utils"
)

// Cache failures are logged and treated as misses so they never fail a request.

func readThrough(ctx context.Context, c cache.Cache, key string, dest any) bool {
	hit, err := c.Get(ctx, key, dest)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("key", key).Error("cache read failed")
		return false
	}
	return hit
}

func writeThrough(ctx context.Context, c cache.Cache, key string, value any, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl); err != nil {
		utils.ErrorLogger.WithError(err).WithField("key", key).Error("cache write failed")
	}
}

func evict(ctx context.Context, c cache.Cache, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		utils.ErrorLogger.WithError(err).WithField("keys", keys).Error("cache evict failed")
	}
}

func logOp(op string, fields logrus.Fields) *logrus.Entry {
	return utils.InfoLogger.WithField("op", op).WithFields(fields)
}
