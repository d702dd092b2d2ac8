package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Benevo-clic/benevoclic-api/config"
)

// NewRedis returns a configured Redis client
func NewRedis(conf config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
