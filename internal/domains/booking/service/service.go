package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"kodesha/config"
	"kodesha/infras/otel"
	"kodesha/infras/postgres"
	"kodesha/internal/domains/booking/model"
	"kodesha/internal/domains/booking/model/dto"
	"kodesha/internal/domains/booking/repository"
	propertyService "kodesha/internal/domains/property/service"
	"kodesha/internal/events"
	"kodesha/shared"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/failure"
	"kodesha/shared/metrics"
	gRepo "kodesha/shared/repository"
	"kodesha/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const maxReferenceAttempts = 5

var (
	errDatesTaken = errors.New("dates taken")
	errStale      = errors.New("booking changed concurrently")
)

// PaymentVoider settles the payment of a booking that is being cancelled.
// It runs inside the cancelling transaction and hands back the payment event to publish after commit.
type PaymentVoider interface {
	VoidForBooking(ctx context.Context, bookingID string) (*events.Event, error)
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, scope dto.Scope, params gDto.QueryParams, status string) (dto.GetBookingsResponse, error)
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	IsAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	Confirm(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	Delete(ctx context.Context, id string) error
	CompletePast(ctx context.Context) (int64, error)
}

type serviceImpl struct {
	repo      repository.Booking
	property  propertyService.Property
	tx        gRepo.Transactor
	voider    PaymentVoider
	publisher events.Publisher
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	property propertyService.Property,
	tx gRepo.Transactor,
	voider PaymentVoider,
	publisher events.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		property:  property,
		tx:        tx,
		voider:    voider,
		publisher: publisher,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, role := shared.Principal(ctx)
	if role != constant.RoleGuest && role != constant.RoleAdmin {
		return res, failure.Forbidden("only guests can make bookings") // nolint:wrapcheck
	}

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return res, failure.Validation(model.FieldCheckIn, "dates must use the YYYY-MM-DD format") // nolint:wrapcheck
	}

	property, err := s.property.Get(ctx, req.PropertyID)
	if err != nil {
		return res, err
	}

	if !property.Active {
		return res, failure.Validation(model.FieldPropertyID, "this property is not accepting bookings") // nolint:wrapcheck
	}

	if property.IsHost(user) {
		return res, failure.Forbidden("you cannot book your own property") // nolint:wrapcheck
	}

	if err = validateStay(checkIn, checkOut, req.Guests, property.MaxGuests); err != nil {
		return res, err
	}

	available, err := s.IsAvailable(ctx, req.PropertyID, checkIn, checkOut, constant.Empty)
	if err != nil {
		return res, err
	}

	if !available {
		return res, failure.Validation(model.FieldCheckIn, "the selected dates are not available") // nolint:wrapcheck
	}

	total := model.TotalPrice(model.Nights(checkIn, checkOut), property.PricePerNight)

	var booking model.Booking

	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		booking = req.ToModel(user, checkIn, checkOut, total)

		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.repo.LockProperty(ctx, booking.PropertyID); err != nil {
				return err
			}

			available, err := s.IsAvailable(ctx, booking.PropertyID, booking.CheckIn, booking.CheckOut, constant.Empty)
			if err != nil {
				return err
			}

			if !available {
				return errDatesTaken
			}

			return s.repo.Insert(ctx, booking)
		})

		if !isReferenceCollision(err) {
			break
		}

		log.Warn().Str("reference", booking.Reference).Int("attempt", attempt).Msg("booking reference collision, retrying")
	}

	switch {
	case err == nil:
	case errors.Is(err, errDatesTaken), postgres.ErrorCode(err) == constant.PqErrorCodeExclusionViolation:
		metrics.IncBookingConflict()
		log.Info().Str("property_id", req.PropertyID).Msg("booking rejected, dates taken concurrently")

		return res, failure.Conflict("dates no longer available, please retry") // nolint:wrapcheck
	default:
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.HostID = property.HostID

	metrics.IncBookingTransition(string(model.StatusPending))
	res.FromModel(booking)
	s.publisher.PublishBooking(ctx, events.New(events.BookingCreated, booking.ID, res))

	log.Info().Str("booking_id", booking.ID).Str("reference", booking.Reference).Msg("booking created")

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !booking.IsGuest(user) && !booking.IsHost(user) {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, listScope dto.Scope, params gDto.QueryParams, status string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, role := shared.Principal(ctx)
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	switch listScope {
	case dto.ScopeMine:
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldGuestID, Value: user, Operator: gDto.FilterOperatorEq, Table: model.TableName,
		})
	case dto.ScopeHosting:
		if role != constant.RoleHost && role != constant.RoleAdmin {
			return res, failure.ForbiddenError
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldHostID, Value: user, Operator: gDto.FilterOperatorEq, Table: "properties",
		})
	case dto.ScopeAll:
		if role != constant.RoleAdmin {
			return res, failure.ForbiddenError
		}
	default:
		return res, failure.BadRequestFromString("unknown booking scope") // nolint:wrapcheck
	}

	if status != constant.Empty {
		switch model.Status(status) {
		case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		default:
			return res, failure.Validation(constant.RequestParamStatus, "unknown booking status") // nolint:wrapcheck
		}

		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName,
		})
	}

	if params.SortBy == constant.Empty {
		params.SortBy = constant.DefaultValueSortBy
		params.SortDir = constant.DefaultValueSortDir
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CheckAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return res, failure.Validation(model.FieldCheckIn, "dates must use the YYYY-MM-DD format") // nolint:wrapcheck
	}

	if err = validateDates(checkIn, checkOut); err != nil {
		return res, err
	}

	property, err := s.property.Get(ctx, req.PropertyID)
	if err != nil {
		return res, err
	}

	res.Nights = model.Nights(checkIn, checkOut)
	res.TotalPrice = model.TotalPrice(res.Nights, property.PricePerNight)

	if !property.Active {
		return res, nil
	}

	res.Available, err = s.IsAvailable(ctx, req.PropertyID, checkIn, checkOut, constant.Empty)
	if err != nil {
		return res, err
	}

	return res, nil
}

// IsAvailable reports whether no pending or confirmed booking of the property overlaps [checkIn, checkOut).
// excludeID lets a booking ignore its own interval. When ctx carries a transaction the check runs inside it.
func (s *serviceImpl) IsAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time, excludeID string) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.IsAvailable")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldPropertyID, Value: propertyID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    []string{string(model.StatusPending), string(model.StatusConfirmed)},
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field: model.FieldCheckIn, ArgName: "range_end", Value: checkOut, Operator: gDto.FilterOperatorLess, Table: model.TableName,
			},
			gDto.Filter{
				Field: model.FieldCheckOut, ArgName: "range_start", Value: checkIn, Operator: gDto.FilterOperatorGreater, Table: model.TableName,
			},
		},
	}

	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field: model.FieldID, ArgName: "exclude_id", Value: excludeID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName,
		})
	}

	taken, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("property_id", propertyID).Msg("failed to check availability")

		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return !taken, nil
}

func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !booking.IsHost(user) {
		return res, failure.Forbidden("only the host can confirm this booking") // nolint:wrapcheck
	}

	if !booking.Status.CanTransitionTo(model.StatusConfirmed) {
		return res, failure.Conflict(fmt.Sprintf("booking is %s and cannot be confirmed", booking.Status)) // nolint:wrapcheck
	}

	affected, err := s.repo.Transition(ctx, id, model.StatusConfirmed, user, model.StatusPending)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to confirm booking")

		return res, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("booking changed, please reload") // nolint:wrapcheck
	}

	booking.Status = model.StatusConfirmed

	metrics.IncBookingTransition(string(model.StatusConfirmed))
	res.FromModel(booking)
	s.publisher.PublishBooking(ctx, events.New(events.BookingConfirmed, booking.ID, res))

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !req.Confirm {
		return res, failure.Validation("confirm", "please confirm the cancellation") // nolint:wrapcheck
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !booking.IsGuest(user) {
		return res, failure.Forbidden("you cannot cancel this booking") // nolint:wrapcheck
	}

	if !booking.CanCancel(timezone.Today()) {
		return res, failure.Forbidden("this booking can no longer be cancelled") // nolint:wrapcheck
	}

	var voided *events.Event

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		affected, err := s.repo.Transition(ctx, id, model.StatusCancelled, user, model.OccupyingStatuses...)
		if err != nil {
			return err
		}

		if affected == 0 {
			return errStale
		}

		voided, err = s.voider.VoidForBooking(ctx, id)

		return err
	})
	if errors.Is(err, errStale) {
		return res, failure.Conflict("booking changed, please reload") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	booking.Status = model.StatusCancelled

	metrics.IncBookingTransition(string(model.StatusCancelled))
	res.FromModel(booking)
	s.publisher.PublishBooking(ctx, events.New(events.BookingCancelled, booking.ID, res))

	if voided != nil {
		s.publisher.PublishPayment(ctx, *voided)
	}

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, role := shared.Principal(ctx); role != constant.RoleAdmin {
		return failure.ForbiddenError
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status != model.StatusPending && booking.Status != model.StatusCancelled {
		return failure.Forbidden("only pending or cancelled bookings can be deleted") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    []string{string(model.StatusPending), string(model.StatusCancelled)},
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}

	if err := s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}

// CompletePast closes confirmed stays whose check-out day has passed. It is safe to run repeatedly:
// the status predicate skips anything a concurrent request moved away from confirmed.
func (s *serviceImpl) CompletePast(ctx context.Context) (count int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CompletePast")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	today := timezone.Today()

	count, err = s.repo.CompletePast(ctx, today, constant.RoleSystem)
	if err != nil {
		log.Error().Err(err).Msg("failed to complete past bookings")

		return 0, fmt.Errorf("failed to complete past bookings: %w", err)
	}

	log.Info().Int64("count", count).Time("before", today).Msg("completed past bookings")

	if count > 0 {
		metrics.AddBookingTransitions(string(model.StatusCompleted), count)
		s.publisher.PublishBooking(ctx, events.New(events.BookingsCompleted, today.Format(constant.DateOnlyFormat), dto.CompleteBookingsResponse{
			Completed: count,
		}))
	}

	return count, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

// validateStay applies the creation rules in order and names the first offending field.
func validateStay(checkIn, checkOut time.Time, guests, maxGuests int) error {
	if err := validateDates(checkIn, checkOut); err != nil {
		return err
	}

	if guests > maxGuests {
		return failure.Validation(model.FieldGuests, fmt.Sprintf("this property accommodates at most %d guests", maxGuests)) // nolint:wrapcheck
	}

	return nil
}

func validateDates(checkIn, checkOut time.Time) error {
	if checkIn.Before(timezone.Today()) {
		return failure.Validation(model.FieldCheckIn, "check-in date cannot be in the past") // nolint:wrapcheck
	}

	if !checkIn.Before(checkOut) {
		return failure.Validation(model.FieldCheckOut, "check-out date must be after check-in date") // nolint:wrapcheck
	}

	if model.Nights(checkIn, checkOut) < 1 {
		return failure.Validation(model.FieldCheckOut, "a stay must be at least one night") // nolint:wrapcheck
	}

	return nil
}

func isReferenceCollision(err error) bool {
	return postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation &&
		postgres.ConstraintName(err) == model.ConstraintReference
}
