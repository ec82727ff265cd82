package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"kodesha/config"
	"kodesha/infras/otel/mocks"
	bookingMocks "kodesha/internal/domains/booking/mocks"
	"kodesha/internal/domains/booking/model"
	"kodesha/internal/domains/booking/model/dto"
	"kodesha/internal/domains/booking/service"
	serviceMocks "kodesha/internal/domains/booking/service/mocks"
	propertyModel "kodesha/internal/domains/property/model"
	propertyMocks "kodesha/internal/domains/property/service/mocks"
	"kodesha/internal/events"
	eventMocks "kodesha/internal/events/mocks"
	"kodesha/shared"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/failure"
	repoMocks "kodesha/shared/repository/mocks"
	"kodesha/shared/timezone"
)

const (
	propertyID = "7b7e0b8e-3c2f-4a57-9d0b-0f3c1f2a4b11"
	guestID    = "guest-1"
	hostID     = "host-1"
)

type fixture struct {
	repo      *bookingMocks.MockBooking
	property  *propertyMocks.MockProperty
	tx        *repoMocks.MockTransactor
	voider    *serviceMocks.MockPaymentVoider
	publisher *eventMocks.MockPublisher
	svc       service.Booking
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		property:  propertyMocks.NewMockProperty(ctrl),
		tx:        repoMocks.NewMockTransactor(ctrl),
		voider:    serviceMocks.NewMockPaymentVoider(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
	}

	f.svc = service.New(f.repo, f.property, f.tx, f.voider, f.publisher, &config.Config{}, mocks.NewOtel())

	return f
}

func (f *fixture) runTx() *gomock.Call {
	return f.tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func day(offset int) time.Time {
	return timezone.Today().AddDate(0, 0, offset)
}

func dayString(offset int) string {
	return day(offset).Format(constant.DateOnlyFormat)
}

func listing() propertyModel.Property {
	return propertyModel.Property{
		ID:            propertyID,
		HostID:        hostID,
		PricePerNight: decimal.RequireFromString("100.00"),
		MaxGuests:     4,
		Active:        true,
	}
}

func guestCtx() context.Context {
	return shared.WithPrincipal(context.Background(), guestID, constant.RoleGuest)
}

func TestBookingService_Create(t *testing.T) {
	validRequest := dto.CreateBookingRequest{
		PropertyID: propertyID,
		CheckIn:    dayString(10),
		CheckOut:   dayString(13),
		Guests:     2,
	}

	withGuests := func(guests int) dto.CreateBookingRequest {
		req := validRequest
		req.Guests = guests

		return req
	}

	withDates := func(checkIn, checkOut int) dto.CreateBookingRequest {
		req := validRequest
		req.CheckIn = dayString(checkIn)
		req.CheckOut = dayString(checkOut)

		return req
	}

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateBookingRequest
		setupMock func(f *fixture)
		wantCode  int
		wantField string
	}{
		{
			name: "three nights at 100.00",
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				f.runTx()
				f.repo.EXPECT().LockProperty(gomock.Any(), propertyID).Return(nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "guests equal to capacity",
			req:  withGuests(4),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				f.runTx()
				f.repo.EXPECT().LockProperty(gomock.Any(), propertyID).Return(nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "guests over capacity",
			req:  withGuests(5),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
			},
			wantCode:  400,
			wantField: model.FieldGuests,
		},
		{
			name: "check-in in the past",
			req:  withDates(-1, 2),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
			},
			wantCode:  400,
			wantField: model.FieldCheckIn,
		},
		{
			name: "check-out before check-in",
			req:  withDates(5, 3),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
			},
			wantCode:  400,
			wantField: model.FieldCheckOut,
		},
		{
			name: "same day check-out",
			req:  withDates(5, 5),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
			},
			wantCode:  400,
			wantField: model.FieldCheckOut,
		},
		{
			name: "overlapping dates",
			req:  withDates(12, 15),
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode:  400,
			wantField: model.FieldCheckIn,
		},
		{
			name: "dates taken between check and insert",
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.runTx()
				f.repo.EXPECT().LockProperty(gomock.Any(), propertyID).Return(nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: 409,
		},
		{
			name: "exclusion constraint fires",
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				f.runTx()
				f.repo.EXPECT().LockProperty(gomock.Any(), propertyID).Return(nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to insert data (booking): %w", &pq.Error{Code: "23P01", Constraint: model.ConstraintNoOverlap}))
			},
			wantCode: 409,
		},
		{
			name: "reference collision is retried",
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(3)
				f.runTx().Times(2)
				f.repo.EXPECT().LockProperty(gomock.Any(), propertyID).Return(nil).Times(2)
				gomock.InOrder(
					f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
						Return(&pq.Error{Code: "23505", Constraint: model.ConstraintReference}),
					f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
				)
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "host books own property",
			ctx:  shared.WithPrincipal(context.Background(), hostID, constant.RoleGuest),
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
			},
			wantCode: 403,
		},
		{
			name:      "host role cannot book",
			ctx:       shared.WithPrincipal(context.Background(), "someone", constant.RoleHost),
			req:       validRequest,
			setupMock: func(_ *fixture) {},
			wantCode:  403,
		},
		{
			name: "inactive property",
			req:  validRequest,
			setupMock: func(f *fixture) {
				inactive := listing()
				inactive.Active = false

				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(inactive, nil)
			},
			wantCode:  400,
			wantField: model.FieldPropertyID,
		},
		{
			name: "missing property",
			req:  validRequest,
			setupMock: func(f *fixture) {
				f.property.EXPECT().Get(gomock.Any(), propertyID).Return(propertyModel.Property{}, failure.NotFound("property not found"))
			},
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			ctx := tt.ctx
			if ctx == nil {
				ctx = guestCtx()
			}

			res, err := f.svc.Create(ctx, tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
				assert.Equal(t, tt.wantField, failure.GetField(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "300.00", res.TotalPrice.StringFixed(2))
			assert.Equal(t, 3, res.Nights)
			assert.Equal(t, string(model.StatusPending), res.Status)
			assert.Equal(t, guestID, res.GuestID)
			assert.Regexp(t, `^BK\d{8}$`, res.Reference)
			assert.Equal(t, tt.req.CheckIn, res.CheckIn)
			assert.True(t, res.CanCancel)
		})
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	f := newFixture(t)

	f.property.EXPECT().Get(gomock.Any(), propertyID).Return(listing(), nil)
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	res, err := f.svc.CheckAvailability(context.Background(), dto.AvailabilityRequest{
		PropertyID: propertyID,
		CheckIn:    dayString(3),
		CheckOut:   dayString(5),
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, 2, res.Nights)
	assert.True(t, decimal.RequireFromString("200").Equal(res.TotalPrice))

	_, err = f.svc.CheckAvailability(context.Background(), dto.AvailabilityRequest{
		PropertyID: propertyID,
		CheckIn:    dayString(5),
		CheckOut:   dayString(3),
	})
	assert.Equal(t, model.FieldCheckOut, failure.GetField(err))
}

func TestBookingService_IsAvailable(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Exist(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
			where, args := filter.GetWhereClause()

			assert.Contains(t, where, "bookings.check_in < :range_end")
			assert.Contains(t, where, "bookings.check_out > :range_start")
			assert.Contains(t, where, "bookings.id != :exclude_id")
			assert.Equal(t, "booking-9", args["exclude_id"])
			assert.Equal(t, string(model.StatusPending), args["status_0"])
			assert.Equal(t, string(model.StatusConfirmed), args["status_1"])

			return false, nil
		})

	available, err := f.svc.IsAvailable(context.Background(), propertyID, day(1), day(3), "booking-9")
	require.NoError(t, err)
	assert.True(t, available)
}

func stored(status model.Status, checkIn int) model.Booking {
	return model.Booking{
		ID:         "booking-1",
		Reference:  "BK00000001",
		PropertyID: propertyID,
		HostID:     hostID,
		GuestID:    guestID,
		CheckIn:    day(checkIn),
		CheckOut:   day(checkIn + 3),
		Guests:     2,
		TotalPrice: decimal.RequireFromString("300.00"),
		Status:     status,
	}
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CancelBookingRequest
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "guest cancels future confirmed booking",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed, 5), nil)
				f.runTx()
				f.repo.EXPECT().
					Transition(gomock.Any(), "booking-1", model.StatusCancelled, guestID, model.StatusPending, model.StatusConfirmed).
					Return(int64(1), nil)
				f.voider.EXPECT().VoidForBooking(gomock.Any(), "booking-1").Return(nil, nil)
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "voided payment is announced after the cancellation",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				refunded := events.New(events.PaymentRefunded, "pay-1", nil)

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed, 5), nil)
				f.runTx()
				f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
				f.voider.EXPECT().VoidForBooking(gomock.Any(), "booking-1").Return(&refunded, nil)
				gomock.InOrder(
					f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any()),
					f.publisher.EXPECT().PublishPayment(gomock.Any(), refunded),
				)
			},
		},
		{
			name:      "confirmation missing",
			req:       dto.CancelBookingRequest{},
			setupMock: func(_ *fixture) {},
			wantCode:  400,
		},
		{
			name: "check-in already passed",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed, -1), nil)
			},
			wantCode: 403,
		},
		{
			name: "other guest",
			ctx:  shared.WithPrincipal(context.Background(), "guest-2", constant.RoleGuest),
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
			},
			wantCode: 403,
		},
		{
			name: "changed concurrently",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
				f.runTx()
				f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: 409,
		},
		{
			name: "payment void fails",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
				f.runTx()
				f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
				f.voider.EXPECT().VoidForBooking(gomock.Any(), "booking-1").Return(nil, errors.New("db down"))
			},
			wantCode: 500,
		},
		{
			name: "not found",
			req:  dto.CancelBookingRequest{Confirm: true},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantCode: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			ctx := tt.ctx
			if ctx == nil {
				ctx = guestCtx()
			}

			res, err := f.svc.Cancel(ctx, "booking-1", tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(model.StatusCancelled), res.Status)
			assert.False(t, res.CanCancel)
		})
	}
}

func TestBookingService_Confirm(t *testing.T) {
	hostCtx := shared.WithPrincipal(context.Background(), hostID, constant.RoleHost)

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "host confirms pending booking",
			ctx:  hostCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
				f.repo.EXPECT().Transition(gomock.Any(), "booking-1", model.StatusConfirmed, hostID, model.StatusPending).Return(int64(1), nil)
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "guest cannot confirm",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
			},
			wantCode: 403,
		},
		{
			name: "cancelled booking",
			ctx:  hostCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusCancelled, 5), nil)
			},
			wantCode: 409,
		},
		{
			name: "lost the race",
			ctx:  hostCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusPending, 5), nil)
				f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: 409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Confirm(tt.ctx, "booking-1")

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(model.StatusConfirmed), res.Status)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		found    model.Booking
		wantCode int
	}{
		{name: "guest owner", ctx: guestCtx(), found: stored(model.StatusPending, 5)},
		{name: "host", ctx: shared.WithPrincipal(context.Background(), hostID, constant.RoleHost), found: stored(model.StatusPending, 5)},
		{name: "admin", ctx: shared.WithPrincipal(context.Background(), "admin-1", constant.RoleAdmin), found: stored(model.StatusPending, 5)},
		{name: "stranger", ctx: shared.WithPrincipal(context.Background(), "guest-2", constant.RoleGuest), found: stored(model.StatusPending, 5), wantCode: 403},
		{name: "missing", ctx: guestCtx(), found: model.Booking{}, wantCode: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.found, nil)

			res, err := f.svc.Get(tt.ctx, "booking-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "BK00000001", res.Reference)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	t.Run("guest lists own bookings", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				where, args := filter.GetWhereClause()

				assert.Contains(t, where, "bookings.guest_id = :guest_id")
				assert.Equal(t, guestID, args["guest_id"])
				assert.Equal(t, "confirmed", args["status"])
				assert.Equal(t, constant.DefaultValueSortBy, params.SortBy)

				return []model.Booking{stored(model.StatusConfirmed, 5)}, nil
			})

		res, err := f.svc.GetAll(guestCtx(), dto.ScopeMine, gDto.QueryParams{Page: 1, Limit: 10}, "confirmed")
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalData)
		assert.Len(t, res.Bookings, 1)
	})

	t.Run("host lists hosted bookings", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				where, _ := filter.GetWhereClause()
				assert.Contains(t, where, "properties.host_id = :host_id")

				return nil, nil
			})

		_, err := f.svc.GetAll(shared.WithPrincipal(context.Background(), hostID, constant.RoleHost), dto.ScopeHosting, gDto.QueryParams{}, "")
		require.NoError(t, err)
	})

	t.Run("guest cannot list all", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetAll(guestCtx(), dto.ScopeAll, gDto.QueryParams{}, "")
		assert.Equal(t, 403, failure.GetCode(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GetAll(guestCtx(), dto.ScopeMine, gDto.QueryParams{}, "archived")
		assert.Equal(t, constant.RequestParamStatus, failure.GetField(err))
	})
}

func TestBookingService_Delete(t *testing.T) {
	adminCtx := shared.WithPrincipal(context.Background(), "admin-1", constant.RoleAdmin)

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "admin deletes cancelled booking",
			ctx:  adminCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusCancelled, 5), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "confirmed bookings are kept",
			ctx:  adminCtx,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed, 5), nil)
			},
			wantCode: 403,
		},
		{
			name:      "guest cannot delete",
			ctx:       guestCtx(),
			setupMock: func(_ *fixture) {},
			wantCode:  403,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(tt.ctx, "booking-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestBookingService_CompletePast(t *testing.T) {
	t.Run("completes and reports count", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().CompletePast(gomock.Any(), timezone.Today(), constant.RoleSystem).Return(int64(2), nil)
		f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())

		count, err := f.svc.CompletePast(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("nothing to complete", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		count, err := f.svc.CompletePast(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))

		_, err := f.svc.CompletePast(context.Background())
		assert.Error(t, err)
	})
}
