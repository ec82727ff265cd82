package queue

import (
	"context"
	"fmt"
	"kodesha/config"
	"kodesha/infras/redis"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// RedisOpt points asynq at its own database on the primary redis.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redis.Address(cfg),
		Password: cfg.Cache.Redis.Primary.Password,
		DB:       cfg.Cache.Redis.Queue.DB,
	}
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

func NewServer(cfg *config.Config, retryDelay asynq.RetryDelayFunc) *asynq.Server {
	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
		RetryDelayFunc:  retryDelay,
		ShutdownTimeout: time.Duration(cfg.Server.Shutdown.GracePeriodSeconds) * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Warn().Err(err).Str("type", task.Type()).Int("retried", retried).Int("max_retry", maxRetry).Msg("task failed")
		}),
		Logger: logAdapter{},
	})
}

func NewScheduler(cfg *config.Config, location *time.Location) *asynq.Scheduler {
	return asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{
		Location: location,
		Logger:   logAdapter{},
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error().Err(err).Msg("failed to enqueue periodic task")

				return
			}

			log.Debug().Str("type", info.Type).Str("id", info.ID).Msg("periodic task enqueued")
		},
	})
}

// logAdapter routes asynq's internal logging through zerolog.
type logAdapter struct{}

func (logAdapter) Debug(args ...any) { log.Debug().Msg(fmt.Sprint(args...)) }
func (logAdapter) Info(args ...any)  { log.Info().Msg(fmt.Sprint(args...)) }
func (logAdapter) Warn(args ...any)  { log.Warn().Msg(fmt.Sprint(args...)) }
func (logAdapter) Error(args ...any) { log.Error().Msg(fmt.Sprint(args...)) }
func (logAdapter) Fatal(args ...any) { log.Fatal().Msg(fmt.Sprint(args...)) }
