package bootstrap

import (
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
)

// InitRedis connects to a cluster when clusterURL is set and to a single
// node otherwise. With neither configured it returns nil and no error.
func InitRedis(url, clusterURL string) (redis.UniversalClient, error) {
	if clusterURL != "" {
		clusterOpts, err := redis.ParseClusterURL(clusterURL)
		if err != nil {
			return nil, err
		}
		return redis.NewClusterClient(clusterOpts), nil
	}
	if url == "" {
		return nil, nil
	}

	client, err := db.InitRedis(&db.RedisConfig{
		URL: url,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
