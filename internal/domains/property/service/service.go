package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"kodesha/config"
	"kodesha/infras/otel"
	"kodesha/internal/domains/property/model"
	"kodesha/internal/domains/property/repository"
	"kodesha/shared"
	"kodesha/shared/cache"
	"kodesha/shared/constant"
	"kodesha/shared/failure"

	"github.com/rs/zerolog/log"
)

const cacheGetProperty = "property:get"

// Property is the listing lookup the booking and payment workflows consume.
type Property interface {
	Get(ctx context.Context, id string) (model.Property, error)
}

type serviceImpl struct {
	repo  repository.Property
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Property, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Property {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res model.Property, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Property.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetProperty, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for property")

		return res, nil
	}

	res, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("property_id", id).Msg("failed to get property")

		return res, fmt.Errorf("failed to get property: %w", err)
	}

	if res.ID == constant.Empty {
		return res, failure.NotFound("property not found") // nolint:wrapcheck
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save property to cache")
	}

	return res, nil
}
