package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"kodesha/infras/otel"
	"kodesha/infras/postgres"
	bookingModel "kodesha/internal/domains/booking/model"
	"kodesha/internal/domains/payment/model"
	propertyModel "kodesha/internal/domains/property/model"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/logger"
	gRepo "kodesha/shared/repository"
)

type Payment interface {
	Insert(ctx context.Context, model model.Payment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Payment, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Payment, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	SumCompletedByHost(ctx context.Context, hostID string) ([]model.Revenue, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// SumCompletedByHost totals completed payments of every property owned by hostID, per currency.
func (r *repositoryImpl) SumCompletedByHost(ctx context.Context, hostID string) ([]model.Revenue, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".payment.SumCompletedByHost")
	defer scope.End()

	query := fmt.Sprintf(`SELECT %[1]s.currency AS currency, COALESCE(SUM(%[1]s.amount), 0) AS total
		FROM %[1]s
		JOIN %[2]s ON %[2]s.id = %[1]s.booking_id
		JOIN %[3]s ON %[3]s.id = %[2]s.property_id
		WHERE %[3]s.host_id = :host_id AND %[1]s.status = :status
		GROUP BY %[1]s.currency
		ORDER BY %[1]s.currency`, model.TableName, bookingModel.TableName, propertyModel.TableName)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := r.Reader(ctx).PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare revenue statement: %w", err)
	}
	defer stmt.Close()

	revenue := []model.Revenue{}

	err = stmt.SelectContext(ctx, &revenue, map[string]any{
		"host_id":         hostID,
		model.FieldStatus: string(model.StatusCompleted),
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to sum host revenue: %w", err)
	}

	return revenue, nil
}
