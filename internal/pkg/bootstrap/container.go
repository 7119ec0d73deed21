package bootstrap

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
	"tradebot/internal/interfaces"
	"tradebot/internal/pkg/caching"
	"tradebot/internal/pkg/limiter"
	"tradebot/internal/services"
)

// NewContainer opens the database and every configured Redis, and registers
// the services. Redis-backed pieces that are not configured are left out;
// the services fall back to local behaviour. The returned cleanup closes
// the database.
func NewContainer(cfg *Config) (*do.Injector, func(), error) {
	adapter, closeDB, err := OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := closeDB(); err != nil {
			logx.Errorw("close database", logx.Field("error", err.Error()))
		}
	}

	fail := func(err error) (*do.Injector, func(), error) {
		cleanup()
		return nil, nil, err
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, adapter)
	do.ProvideNamedValue(injector, services.NAME_SESSION_TTL, cfg.SessionTTL)

	redisCache, err := InitRedis(cfg.RedisCache, cfg.ClusterRedisCache)
	if err != nil {
		return fail(err)
	}
	cache := caching.New(caching.Options{Redis: redisCache})
	do.ProvideValue[caching.Cache](injector, cache)
	logx.Infow("cache ready", logx.Field("tiers", cache.Tiers()))

	redisMutex, err := InitRedis(cfg.RedisMutex, cfg.ClusterRedisMutex)
	if err != nil {
		return fail(err)
	}
	if redisMutex != nil {
		do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
			pool := goredis.NewPool(redisMutex)
			return redsync.New(pool), nil
		})
	}

	redisLimiter, err := InitRedis(cfg.RedisLimiter, cfg.ClusterRedisLimiter)
	if err != nil {
		return fail(err)
	}
	if redisLimiter != nil {
		do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
			return limiter.NewLimiter(redisLimiter)
		})
	}

	redisAlerts, err := InitRedis(cfg.RedisAlerts, cfg.ClusterRedisAlerts)
	if err != nil {
		return fail(err)
	}
	if redisAlerts != nil {
		do.ProvideNamedValue[redis.UniversalClient](injector, "redis-alerts", redisAlerts)
	}

	do.Provide(injector, func(i *do.Injector) (*services.ServiceToken, error) {
		return services.NewServiceToken(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceWallet, error) {
		return services.NewServiceWallet(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceAlert, error) {
		return services.NewServiceAlert(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceSession, error) {
		return services.NewServiceSession(i)
	})

	logx.Infow("container ready",
		logx.Field("dialect", adapter.Dialect().String()),
		logx.Field("redis_cache", redisCache != nil),
		logx.Field("redis_mutex", redisMutex != nil),
		logx.Field("redis_limiter", redisLimiter != nil),
		logx.Field("redis_alerts", redisAlerts != nil),
		logx.Field("session_ttl", cfg.SessionTTL.String()),
	)

	return injector, cleanup, nil
}

// MustAdapter is a shorthand for the binaries.
func MustAdapter(injector *do.Injector) *database.Adapter {
	return do.MustInvoke[*database.Adapter](injector)
}
