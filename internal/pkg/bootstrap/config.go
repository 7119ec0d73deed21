// Package bootstrap turns environment variables into the database handle,
// Redis clients, logger and service container used by the binaries.
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	DRIVER_POSTGRES = "postgres"
	DRIVER_SQLITE   = "sqlite"

	DEFAULT_SQLITE_PATH = "./tradebot.db"
	DEFAULT_SESSION_TTL = 30 * time.Minute
)

type Config struct {
	DBDriver   string
	DBDSN      string
	DBPassword string
	SQLitePath string

	RedisCache          string
	ClusterRedisCache   string
	RedisMutex          string
	ClusterRedisMutex   string
	RedisLimiter        string
	ClusterRedisLimiter string
	RedisAlerts         string
	ClusterRedisAlerts  string

	SessionTTL time.Duration

	LogLevel    string
	LogEncoding string
}

func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:            strings.ToLower(os.Getenv("DB_DRIVER")),
		SQLitePath:          os.Getenv("SQLITE_PATH"),
		RedisCache:          os.Getenv("REDIS_CACHE"),
		ClusterRedisCache:   os.Getenv("CLUSTER_REDIS_CACHE"),
		RedisMutex:          os.Getenv("REDIS_MUTEX"),
		ClusterRedisMutex:   os.Getenv("CLUSTER_REDIS_MUTEX"),
		RedisLimiter:        os.Getenv("REDIS_LIMITER"),
		ClusterRedisLimiter: os.Getenv("CLUSTER_REDIS_LIMITER"),
		RedisAlerts:         os.Getenv("REDIS_ALERTS"),
		ClusterRedisAlerts:  os.Getenv("CLUSTER_REDIS_ALERTS"),
		SessionTTL:          DEFAULT_SESSION_TTL,
		LogLevel:            os.Getenv("LOG_LEVEL"),
		LogEncoding:         os.Getenv("LOG_ENCODING"),
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = DRIVER_SQLITE
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = DEFAULT_SQLITE_PATH
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogEncoding == "" {
		cfg.LogEncoding = "plain"
	}

	switch cfg.DBDriver {
	case DRIVER_POSTGRES:
		vs, err := env.EnvsRequired("DB_DSN", "DB_PASSWORD")
		if err != nil {
			return nil, err
		}
		cfg.DBDSN = vs["DB_DSN"]
		cfg.DBPassword = vs["DB_PASSWORD"]
	case DRIVER_SQLITE:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	return cfg, nil
}

func SetupLogging(serviceName string, cfg *Config) {
	logx.MustSetup(logx.LogConf{
		ServiceName: serviceName,
		Mode:        "console",
		Encoding:    cfg.LogEncoding,
		Level:       cfg.LogLevel,
		Stat:        false,
	})
}
