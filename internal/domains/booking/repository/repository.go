package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"kodesha/infras/otel"
	"kodesha/infras/postgres"
	"kodesha/internal/domains/booking/model"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/logger"
	gRepo "kodesha/shared/repository"
	"kodesha/shared/timezone"
	"time"
)

const argCurrentStatus = "current_status"

var errNoTransaction = errors.New("lock requires a transaction")

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	LockProperty(ctx context.Context, propertyID string) error
	LockByPayment(ctx context.Context, paymentID string) error
	Transition(ctx context.Context, id string, to model.Status, user string, from ...model.Status) (int64, error)
	CompletePast(ctx context.Context, today time.Time, user string) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// LockProperty serializes booking writers of one property until the surrounding transaction ends.
func (r *repositoryImpl) LockProperty(ctx context.Context, propertyID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.LockProperty")
	defer scope.End()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		return errNoTransaction
	}

	query := "SELECT pg_advisory_xact_lock(hashtext(:property_id))"
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := r.Writer(ctx).NamedExecContext(ctx, query, map[string]any{model.FieldPropertyID: propertyID})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock property bookings: %w", err)
	}

	return nil
}

// LockByPayment row-locks the booking a payment belongs to. Writers touching both rows lock the booking first.
func (r *repositoryImpl) LockByPayment(ctx context.Context, paymentID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.LockByPayment")
	defer scope.End()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		return errNoTransaction
	}

	query := fmt.Sprintf("SELECT b.id FROM %s b JOIN payments p ON p.booking_id = b.id WHERE p.id = :payment_id FOR UPDATE OF b",
		model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := r.Writer(ctx).NamedExecContext(ctx, query, map[string]any{"payment_id": paymentID})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock booking of payment: %w", err)
	}

	return nil
}

// Transition moves the booking to status to, but only while it is still in one of from.
// Zero affected rows means another writer got there first.
func (r *repositoryImpl) Transition(ctx context.Context, id string, to model.Status, user string, from ...model.Status) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Transition")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{
				Field:    model.FieldStatus,
				ArgName:  argCurrentStatus,
				Value:    statusValues(from),
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}

	return r.Update(ctx, statusChange(to, user), filter)
}

// CompletePast closes every confirmed stay that checked out before today in a single statement.
func (r *repositoryImpl) CompletePast(ctx context.Context, today time.Time, user string) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CompletePast")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				ArgName:  argCurrentStatus,
				Value:    string(model.StatusConfirmed),
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{Field: model.FieldCheckOut, Value: today, Operator: gDto.FilterOperatorLess, Table: model.TableName},
		},
	}

	return r.Update(ctx, statusChange(model.StatusCompleted, user), filter)
}

func statusChange(to model.Status, user string) map[string]any {
	return map[string]any{
		model.FieldStatus:        string(to),
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}
}

func statusValues(statuses []model.Status) []string {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	return values
}
