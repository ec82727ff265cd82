package redis

import (
	"context"
	"kodesha/config"
	"net"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
	pingTimeout = 5 * time.Second
)

// Address is the primary redis address. The cache and the task queue share it on separate databases.
func Address(config *config.Config) string {
	return net.JoinHostPort(config.Cache.Redis.Primary.Host, config.Cache.Redis.Primary.Port)
}

func New(config *config.Config) *goRedis.Client {
	client := goRedis.NewClient(&goRedis.Options{
		Addr:         Address(config),
		Password:     config.Cache.Redis.Primary.Password,
		DB:           config.Cache.Redis.Primary.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", Address(config)).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", config.Cache.Redis.Primary.DB).
		Int("queue_db", config.Cache.Redis.Queue.DB).
		Str("addr", Address(config)).
		Msg("Connected to Redis")

	return client
}
