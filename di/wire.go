//go:build wireinject
// +build wireinject

package di

import (
	"kodesha/config"
	"kodesha/infras/jwt"
	"kodesha/infras/kafka"
	"kodesha/infras/otel"
	"kodesha/infras/postgres"
	"kodesha/infras/queue"
	"kodesha/infras/redis"
	"kodesha/internal/events"
	"kodesha/internal/tasks"
	"kodesha/permissions"
	"kodesha/shared/cache"
	gRepo "kodesha/shared/repository"
	"kodesha/transport/http"
	"kodesha/transport/http/middleware"
	"kodesha/transport/http/router"

	bookingRepository "kodesha/internal/domains/booking/repository"
	bookingService "kodesha/internal/domains/booking/service"
	paymentProvider "kodesha/internal/domains/payment/provider"
	paymentRepository "kodesha/internal/domains/payment/repository"
	paymentService "kodesha/internal/domains/payment/service"
	propertyRepository "kodesha/internal/domains/property/repository"
	propertyService "kodesha/internal/domains/property/service"
	bookingHandler "kodesha/internal/handlers/booking"
	paymentHandler "kodesha/internal/handlers/payment"

	"github.com/google/wire"
	"github.com/hibiken/asynq"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(gRepo.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	queue.NewClient,
	wire.Bind(new(tasks.Enqueuer), new(*asynq.Client)),
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewPublisher,
)

var propertyDomain = wire.NewSet(
	propertyRepository.New,
	propertyService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	wire.Bind(new(bookingService.PaymentVoider), new(paymentService.Payment)),
)

var paymentDomain = wire.NewSet(
	paymentRepository.New,
	paymentProvider.FromConfig,
	paymentService.New,
	tasks.NewPollScheduler,
	wire.Bind(new(paymentService.PollScheduler), new(*tasks.PollScheduler)),
)

var domains = wire.NewSet(
	propertyDomain,
	bookingDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *tasks.Worker {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
		tasks.NewProcessor,
		tasks.NewWorker,
	)

	return &tasks.Worker{}
}
