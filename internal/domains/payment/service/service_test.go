package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"kodesha/config"
	"kodesha/infras/otel/mocks"
	bookingMocks "kodesha/internal/domains/booking/mocks"
	bookingModel "kodesha/internal/domains/booking/model"
	paymentMocks "kodesha/internal/domains/payment/mocks"
	"kodesha/internal/domains/payment/model"
	"kodesha/internal/domains/payment/model/dto"
	"kodesha/internal/domains/payment/provider"
	"kodesha/internal/domains/payment/provider/providertest"
	"kodesha/internal/domains/payment/service"
	serviceMocks "kodesha/internal/domains/payment/service/mocks"
	"kodesha/internal/events"
	eventMocks "kodesha/internal/events/mocks"
	"kodesha/shared"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/failure"
	repoMocks "kodesha/shared/repository/mocks"
)

const (
	paymentID = "pay-1"
	bookingID = "booking-1"
	guestID   = "guest-1"
	hostID    = "host-1"
)

type fixture struct {
	repo      *paymentMocks.MockPayment
	bookings  *bookingMocks.MockBooking
	tx        *repoMocks.MockTransactor
	poller    *serviceMocks.MockPollScheduler
	publisher *eventMocks.MockPublisher
	card      *providertest.Capturing
	mtn       *providertest.Fake
	svc       service.Payment
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Payment.DefaultCurrency = "USD"
	cfg.Payment.DefaultMethod = string(model.MethodCardGateway)
	cfg.Payment.MobileMoneyCurrency = "RWF"
	cfg.Payment.USDRate = "1300"
	cfg.Payment.CountryCode = "250"

	return cfg
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      paymentMocks.NewMockPayment(ctrl),
		bookings:  bookingMocks.NewMockBooking(ctrl),
		tx:        repoMocks.NewMockTransactor(ctrl),
		poller:    serviceMocks.NewMockPollScheduler(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
		card:      providertest.NewCapturing(model.MethodCardGateway),
		mtn:       providertest.New(model.MethodMTN),
	}

	registry := provider.NewRegistry(f.card, f.mtn)
	f.svc = service.New(f.repo, f.bookings, registry, f.tx, f.poller, f.publisher, testConfig(), mocks.NewOtel())

	return f
}

func (f *fixture) runTx() *gomock.Call {
	return f.tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

// change matches an update map that sets key to value.
type change struct {
	key   string
	value any
}

func (c change) Matches(x any) bool {
	changes, ok := x.(map[string]any)
	if !ok {
		return false
	}

	got, ok := changes[c.key]
	if !ok {
		return false
	}

	if want, ok := c.value.(decimal.Decimal); ok {
		gotDecimal, ok := got.(decimal.Decimal)

		return ok && want.Equal(gotDecimal)
	}

	return got == c.value
}

func (c change) String() string {
	return fmt.Sprintf("sets %s to %v", c.key, c.value)
}

// claim matches the update that reserves a payment request under a fresh reference.
type claim struct{}

func (claim) Matches(x any) bool {
	changes, ok := x.(map[string]any)
	if !ok {
		return false
	}

	reference, ok := changes[model.FieldProviderReference].(string)

	return ok && reference != constant.Empty
}

func (claim) String() string {
	return "claims the payment request"
}

func guestCtx() context.Context {
	return shared.WithPrincipal(context.Background(), guestID, constant.RoleGuest)
}

func pendingPayment() model.Payment {
	return model.Payment{
		ID:               paymentID,
		BookingID:        bookingID,
		Method:           model.MethodCardGateway,
		Amount:           decimal.RequireFromString("300.00"),
		Currency:         "USD",
		Status:           model.StatusPending,
		BookingReference: "BK12345678",
		BookingStatus:    string(bookingModel.StatusPending),
		BookingTotal:     decimal.RequireFromString("300.00"),
		GuestID:          guestID,
		HostID:           hostID,
	}
}

func requested(payment model.Payment, method model.Method, ref string) model.Payment {
	payment.Method = method
	payment.ProviderPaymentID = &ref

	return payment
}

func withStatus(payment model.Payment, status model.Status) model.Payment {
	payment.Status = status

	return payment
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, code, failure.GetCode(err))
}

func TestPaymentService_GetOrCreate(t *testing.T) {
	pendingBooking := bookingModel.Booking{
		ID:         bookingID,
		Reference:  "BK12345678",
		GuestID:    guestID,
		HostID:     hostID,
		TotalPrice: decimal.RequireFromString("300.00"),
		Status:     bookingModel.StatusPending,
	}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
		assertRes func(t *testing.T, res dto.PaymentResponse)
	}{
		{
			name: "returns existing payment unchanged",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBooking, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(pendingPayment(), model.StatusFailed), nil)
			},
			assertRes: func(t *testing.T, res dto.PaymentResponse) {
				assert.Equal(t, paymentID, res.ID)
				assert.Equal(t, string(model.StatusFailed), res.Status)
			},
		},
		{
			name: "drafts a payment with the configured defaults",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBooking, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Payment{}, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p model.Payment) error {
					assert.Equal(t, bookingID, p.BookingID)
					assert.Equal(t, model.MethodCardGateway, p.Method)
					assert.Equal(t, "USD", p.Currency)
					assert.True(t, decimal.RequireFromString("300").Equal(p.Amount))
					assert.Equal(t, model.StatusPending, p.Status)

					return nil
				})
			},
			assertRes: func(t *testing.T, res dto.PaymentResponse) {
				assert.NotEmpty(t, res.ID)
				assert.Equal(t, "BK12345678", res.BookingReference)
				assert.Equal(t, "Card", res.MethodLabel)
			},
		},
		{
			name: "concurrent creation reads the winner back",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBooking, nil)
				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Payment{}, nil),
					f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
						Return(fmt.Errorf("failed to insert data: %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil),
				)
			},
			assertRes: func(t *testing.T, res dto.PaymentResponse) {
				assert.Equal(t, paymentID, res.ID)
			},
		},
		{
			name: "booking must still be pending",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				booking := pendingBooking
				booking.Status = bookingModel.StatusCancelled

				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Payment{}, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "other guests are rejected",
			ctx:  shared.WithPrincipal(context.Background(), "someone-else", constant.RoleGuest),
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingBooking, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "booking not found",
			ctx:  guestCtx(),
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.GetOrCreate(tt.ctx, bookingID)

			if tt.wantCode != 0 {
				assertCode(t, err, tt.wantCode)

				return
			}

			require.NoError(t, err)
			tt.assertRes(t, res)
		})
	}
}

func TestPaymentService_SelectMethod(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.SelectMethodRequest
		setupMock func(f *fixture)
		wantCode  int
		wantField string
		assertRes func(t *testing.T, res dto.PaymentResponse)
	}{
		{
			name: "mobile money converts the booking total once",
			req:  dto.SelectMethodRequest{Method: string(model.MethodMTN), PhoneNumber: "0780123456"},
			setupMock: func(f *fixture) {
				payment := pendingPayment()
				payment.Amount = decimal.RequireFromString("390000")
				payment.Currency = "RWF"

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(payment, model.StatusFailed), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.All(
					change{key: model.FieldAmount, value: decimal.RequireFromString("390000")},
					change{key: model.FieldCurrency, value: "RWF"},
					change{key: model.FieldPayerContact, value: "250780123456"},
					change{key: model.FieldStatus, value: string(model.StatusPending)},
				), gomock.Any()).Return(int64(1), nil)
			},
			assertRes: func(t *testing.T, res dto.PaymentResponse) {
				assert.Equal(t, string(model.MethodMTN), res.Method)
				assert.Equal(t, "MTN Mobile Money", res.MethodLabel)
				assert.Equal(t, "390000", res.Amount.String())
				assert.Equal(t, string(model.StatusPending), res.Status)
				assert.Empty(t, res.ProviderReference)
			},
		},
		{
			name: "card uses the booking total in USD",
			req:  dto.SelectMethodRequest{Method: string(model.MethodCardGateway)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.All(
					change{key: model.FieldAmount, value: decimal.RequireFromString("300")},
					change{key: model.FieldCurrency, value: "USD"},
					change{key: model.FieldPayerContact, value: ""},
				), gomock.Any()).Return(int64(1), nil)
			},
			assertRes: func(t *testing.T, res dto.PaymentResponse) {
				assert.Equal(t, "USD", res.Currency)
			},
		},
		{
			name: "invalid phone number is rejected before any change",
			req:  dto.SelectMethodRequest{Method: string(model.MethodAirtel), PhoneNumber: "12345"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
			},
			wantCode:  http.StatusBadRequest,
			wantField: "phone_number",
		},
		{
			name: "mobile money requires a phone number",
			req:  dto.SelectMethodRequest{Method: string(model.MethodAirtel)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
			},
			wantCode:  http.StatusBadRequest,
			wantField: "phone_number",
		},
		{
			name:      "unknown method",
			req:       dto.SelectMethodRequest{Method: "cash"},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
			wantField: model.FieldMethod,
		},
		{
			name: "completed payment cannot switch",
			req:  dto.SelectMethodRequest{Method: string(model.MethodCardGateway)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(pendingPayment(), model.StatusCompleted), nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "requested payment cannot switch",
			req:  dto.SelectMethodRequest{Method: string(model.MethodCardGateway)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(pendingPayment(), model.MethodMTN, "ref-1"), nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "concurrent change",
			req:  dto.SelectMethodRequest{Method: string(model.MethodCardGateway)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.SelectMethod(guestCtx(), paymentID, tt.req)

			if tt.wantCode != 0 {
				assertCode(t, err, tt.wantCode)
				assert.Equal(t, tt.wantField, failure.GetField(err))

				return
			}

			require.NoError(t, err)
			tt.assertRes(t, res)
		})
	}
}

func TestPaymentService_RequestPayment(t *testing.T) {
	mobile := func() model.Payment {
		payment := pendingPayment()
		payment.Method = model.MethodMTN
		payment.PayerContact = "250780123456"

		return payment
	}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
		assertRes func(t *testing.T, f *fixture, res dto.RequestPaymentResponse)
	}{
		{
			name: "mobile money stores the reference and schedules a poll",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mobile(), nil)
				gomock.InOrder(
					f.repo.EXPECT().Update(gomock.Any(), claim{}, gomock.Any()).Return(int64(1), nil),
					f.repo.EXPECT().Update(gomock.Any(), change{key: model.FieldProviderPaymentID, value: "ref-mtn_momo"}, gomock.Any()).
						Return(int64(1), nil),
				)
				f.poller.EXPECT().SchedulePoll(gomock.Any(), paymentID, "ref-mtn_momo").Return(nil)
			},
			assertRes: func(t *testing.T, f *fixture, res dto.RequestPaymentResponse) {
				assert.Equal(t, "ref-mtn_momo", res.ProviderReference)
				assert.Equal(t, string(provider.StatusPending), res.Status)

				requests := f.mtn.Requests()
				require.Len(t, requests, 1)
				assert.Equal(t, "250780123456", requests[0].PayerContact)
				assert.Equal(t, "USD", requests[0].Currency)
			},
		},
		{
			name: "card returns the approval link without polling",
			setupMock: func(f *fixture) {
				f.card.Response.ApproveURL = "https://gateway/approve"

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)
			},
			assertRes: func(t *testing.T, _ *fixture, res dto.RequestPaymentResponse) {
				assert.Equal(t, "https://gateway/approve", res.ApproveURL)
				assert.Equal(t, string(model.MethodCardGateway), res.Method)
			},
		},
		{
			name: "already requested payment is returned as is",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(mobile(), model.MethodMTN, "ref-existing"), nil)
			},
			assertRes: func(t *testing.T, f *fixture, res dto.RequestPaymentResponse) {
				assert.Equal(t, "ref-existing", res.ProviderReference)
				assert.Empty(t, f.mtn.Requests())
			},
		},
		{
			name: "lost claim returns the request stored by the winner",
			setupMock: func(f *fixture) {
				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mobile(), nil),
					f.repo.EXPECT().Update(gomock.Any(), claim{}, gomock.Any()).Return(int64(0), nil),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(mobile(), model.MethodMTN, "ref-winner"), nil),
				)
			},
			assertRes: func(t *testing.T, f *fixture, res dto.RequestPaymentResponse) {
				assert.Equal(t, "ref-winner", res.ProviderReference)
				assert.Empty(t, f.mtn.Requests())
			},
		},
		{
			name: "lost claim while the winner is still sending",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mobile(), nil).Times(2)
				f.repo.EXPECT().Update(gomock.Any(), claim{}, gomock.Any()).Return(int64(0), nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "provider outage releases the claim",
			setupMock: func(f *fixture) {
				f.mtn.RequestErr = &provider.Error{Provider: model.MethodMTN, Operation: "request_to_pay", StatusCode: http.StatusBadGateway}

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mobile(), nil)
				gomock.InOrder(
					f.repo.EXPECT().Update(gomock.Any(), claim{}, gomock.Any()).Return(int64(1), nil),
					f.repo.EXPECT().Update(gomock.Any(), change{key: model.FieldProviderReference, value: constant.Empty}, gomock.Any()).
						Return(int64(1), nil),
				)
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "rejected payer input",
			setupMock: func(f *fixture) {
				f.mtn.RequestErr = &provider.InvalidInputError{Field: "phone_number", Message: "unknown payer"}

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(mobile(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "failed payment must select a method again",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(mobile(), model.StatusFailed), nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.RequestPayment(guestCtx(), paymentID)

			if tt.wantCode != 0 {
				assertCode(t, err, tt.wantCode)

				return
			}

			require.NoError(t, err)
			tt.assertRes(t, f, res)
		})
	}
}

// paymentRow mimics the conditional UPDATE of a single payments row.
type paymentRow struct {
	mu        sync.Mutex
	payment   model.Payment
	whereSeen []string
}

func (r *paymentRow) get(context.Context, gDto.FilterGroup, ...string) (model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.payment, nil
}

func (r *paymentRow) update(_ context.Context, changes map[string]any, filter gDto.FilterGroup) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	where, args := filter.GetWhereClause()
	r.whereSeen = append(r.whereSeen, where)

	if r.payment.Status != model.StatusPending || r.payment.Requested() {
		return 0, nil
	}

	if reference, ok := args["claimed_reference"]; !ok || reference != r.payment.ProviderReference {
		return 0, nil
	}

	if reference, ok := changes[model.FieldProviderReference].(string); ok {
		r.payment.ProviderReference = reference
	}

	if ref, ok := changes[model.FieldProviderPaymentID].(string); ok {
		r.payment.ProviderPaymentID = &ref
	}

	return 1, nil
}

func TestPaymentService_RequestPayment_Concurrent(t *testing.T) {
	f := newFixture(t)

	payment := pendingPayment()
	payment.Method = model.MethodMTN
	payment.PayerContact = "250780123456"
	row := &paymentRow{payment: payment}

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(row.get).AnyTimes()
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(row.update).AnyTimes()
	f.poller.EXPECT().SchedulePoll(gomock.Any(), paymentID, "ref-mtn_momo").Return(nil)

	const callers = 5

	var wg sync.WaitGroup

	results := make([]dto.RequestPaymentResponse, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], errs[i] = f.svc.RequestPayment(guestCtx(), paymentID)
		}()
	}

	wg.Wait()

	assert.Len(t, f.mtn.Requests(), 1)
	require.NotNil(t, row.payment.ProviderPaymentID)
	assert.Equal(t, "ref-mtn_momo", *row.payment.ProviderPaymentID)

	for i := range callers {
		if errs[i] != nil {
			assert.Equal(t, http.StatusConflict, failure.GetCode(errs[i]))

			continue
		}

		assert.Equal(t, "ref-mtn_momo", results[i].ProviderReference)
	}

	for _, where := range row.whereSeen {
		assert.Contains(t, where, "payments.provider_reference = :claimed_reference")
		assert.Contains(t, where, "payments.provider_payment_id IS NULL")
	}
}

func TestPaymentService_Reconcile(t *testing.T) {
	success := provider.Result{Status: provider.StatusSuccessful, TransactionID: "FT-1"}

	tests := []struct {
		name      string
		payment   model.Payment
		result    provider.Result
		setupMock func(f *fixture)
		want      service.Reconciliation
	}{
		{
			name:    "success completes the payment and confirms the booking",
			payment: requested(pendingPayment(), model.MethodMTN, "ref-1"),
			result:  success,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Update(gomock.Any(), gomock.All(
					change{key: model.FieldStatus, value: string(model.StatusCompleted)},
					change{key: model.FieldTransactionID, value: "FT-1"},
				), gomock.Any()).Return(int64(1), nil)
				f.bookings.EXPECT().
					Transition(gomock.Any(), bookingID, bookingModel.StatusConfirmed, constant.RoleSystem, bookingModel.StatusPending).
					Return(int64(1), nil)
				f.publisher.EXPECT().PublishPayment(gomock.Any(), gomock.Any())
				f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any())
			},
			want: service.Reconciliation{Outcome: service.OutcomeApplied, Status: model.StatusCompleted, BookingConfirmed: true},
		},
		{
			name:    "success on a failed payment still completes it",
			payment: withStatus(pendingPayment(), model.StatusFailed),
			result:  success,
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
				f.bookings.EXPECT().Transition(gomock.Any(), bookingID, gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.publisher.EXPECT().PublishPayment(gomock.Any(), gomock.Any())
			},
			want: service.Reconciliation{Outcome: service.OutcomeApplied, Status: model.StatusCompleted},
		},
		{
			name:      "second success is a duplicate",
			payment:   withStatus(pendingPayment(), model.StatusCompleted),
			result:    success,
			setupMock: func(_ *fixture) {},
			want:      service.Reconciliation{Outcome: service.OutcomeDuplicate, Status: model.StatusCompleted},
		},
		{
			name:      "success after cancellation is ignored",
			payment:   withStatus(pendingPayment(), model.StatusCancelled),
			result:    success,
			setupMock: func(_ *fixture) {},
			want:      service.Reconciliation{Outcome: service.OutcomeIgnored, Status: model.StatusCancelled},
		},
		{
			name:    "failure marks a pending payment failed",
			payment: pendingPayment(),
			result:  provider.Result{Status: provider.StatusFailed, Reason: "rejected"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Update(gomock.Any(), change{key: model.FieldStatus, value: string(model.StatusFailed)}, gomock.Any()).
					Return(int64(1), nil)
				f.publisher.EXPECT().PublishPayment(gomock.Any(), gomock.Any())
			},
			want: service.Reconciliation{Outcome: service.OutcomeApplied, Status: model.StatusFailed},
		},
		{
			name:      "failure never regresses a completed payment",
			payment:   withStatus(pendingPayment(), model.StatusCompleted),
			result:    provider.Result{Status: provider.StatusFailed},
			setupMock: func(_ *fixture) {},
			want:      service.Reconciliation{Outcome: service.OutcomeIgnored, Status: model.StatusCompleted},
		},
		{
			name:      "pending changes nothing",
			payment:   pendingPayment(),
			result:    provider.Result{Status: provider.StatusPending},
			setupMock: func(_ *fixture) {},
			want:      service.Reconciliation{Outcome: service.OutcomePending, Status: model.StatusPending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.runTx()
			f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil)
			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(tt.payment, nil)
			tt.setupMock(f)

			got, err := f.svc.Reconcile(context.Background(), paymentID, tt.result)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentService_Reconcile_NotFound(t *testing.T) {
	f := newFixture(t)
	f.runTx()
	f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil)
	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(model.Payment{}, nil)

	_, err := f.svc.Reconcile(context.Background(), paymentID, provider.Result{Status: provider.StatusSuccessful})

	assertCode(t, err, http.StatusNotFound)
}

func TestPaymentService_Reconcile_LocksBookingFirst(t *testing.T) {
	f := newFixture(t)
	f.runTx()

	var locks []string

	gomock.InOrder(
		f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).DoAndReturn(func(context.Context, string) error {
			locks = append(locks, bookingModel.TableName)

			return nil
		}),
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup) (model.Payment, error) {
			locks = append(locks, model.TableName)

			return pendingPayment(), nil
		}),
	)

	_, err := f.svc.Reconcile(context.Background(), paymentID, provider.Result{Status: provider.StatusPending})

	require.NoError(t, err)
	assert.Equal(t, []string{"bookings", "payments"}, locks)
}

func TestPaymentService_Reconcile_LockFailure(t *testing.T) {
	f := newFixture(t)
	f.runTx()
	f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(errors.New("lock timeout"))

	_, err := f.svc.Reconcile(context.Background(), paymentID, provider.Result{Status: provider.StatusSuccessful})

	assertCode(t, err, http.StatusInternalServerError)
}

func TestPaymentService_DoubleSuccessIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.mtn = providertest.New(model.MethodMTN, provider.Result{Status: provider.StatusSuccessful, TransactionID: "FT-1"})
	f.svc = service.New(f.repo, f.bookings, provider.NewRegistry(f.mtn), f.tx, f.poller, f.publisher, testConfig(), mocks.NewOtel())

	payment := requested(pendingPayment(), model.MethodMTN, "ref-1")
	completed := withStatus(payment, model.StatusCompleted)

	gomock.InOrder(
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil),
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil),
	)
	f.runTx().Times(2)
	f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil).Times(2)
	gomock.InOrder(
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(payment, nil),
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(completed, nil),
	)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(1)
	f.bookings.EXPECT().Transition(gomock.Any(), bookingID, gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(1)
	f.publisher.EXPECT().PublishPayment(gomock.Any(), gomock.Any()).Times(1)
	f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any()).Times(1)

	first, err := f.svc.Refresh(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeApplied, first.Outcome)

	second, err := f.svc.Refresh(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeDuplicate, second.Outcome)
	assert.Equal(t, model.StatusCompleted, second.Status)
}

func TestPaymentService_CheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		want      dto.PaymentStatusResponse
		wantCode  int
	}{
		{
			name: "settled payment is answered locally",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(pendingPayment(), model.StatusCompleted), nil)
			},
			want: dto.PaymentStatusResponse{Status: string(model.StatusCompleted)},
		},
		{
			name: "pending provider answer is still processing",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(pendingPayment(), model.MethodMTN, "ref-1"), nil)
				f.runTx()
				f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil)
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(requested(pendingPayment(), model.MethodMTN, "ref-1"), nil)
			},
			want: dto.PaymentStatusResponse{Status: string(model.StatusPending), Message: dto.MessageProcessing},
		},
		{
			name: "unrequested payment",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingPayment(), nil)
			},
			want: dto.PaymentStatusResponse{Status: string(model.StatusPending), Message: "payment has not been requested yet"},
		},
		{
			name: "provider outage",
			setupMock: func(f *fixture) {
				f.mtn.StatusErr = errors.New("connection refused")

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(pendingPayment(), model.MethodMTN, "ref-1"), nil)
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "only the payer may check",
			setupMock: func(f *fixture) {
				payment := pendingPayment()
				payment.GuestID = "someone-else"

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			got, err := f.svc.CheckStatus(guestCtx(), paymentID)

			if tt.wantCode != 0 {
				assertCode(t, err, tt.wantCode)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentService_Capture(t *testing.T) {
	t.Run("declined capture fails the payment", func(t *testing.T) {
		f := newFixture(t)
		f.card = providertest.NewCapturing(model.MethodCardGateway, provider.Result{Status: provider.StatusPending})
		f.svc = service.New(f.repo, f.bookings, provider.NewRegistry(f.card), f.tx, f.poller, f.publisher, testConfig(), mocks.NewOtel())

		payment := requested(pendingPayment(), model.MethodCardGateway, "ORDER-1")

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil)
		f.runTx()
		f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil)
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(payment, nil)
		f.repo.EXPECT().Update(gomock.Any(), change{key: model.FieldStatus, value: string(model.StatusFailed)}, gomock.Any()).
			Return(int64(1), nil)
		f.publisher.EXPECT().PublishPayment(gomock.Any(), gomock.Any())

		got, err := f.svc.Capture(guestCtx(), paymentID)

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusFailed), got.Status)
		assert.Equal(t, []string{"ORDER-1"}, f.card.Captures())
	})

	t.Run("completed payment is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withStatus(pendingPayment(), model.StatusCompleted), nil)

		got, err := f.svc.Capture(guestCtx(), paymentID)

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusCompleted), got.Status)
		assert.Empty(t, f.card.Captures())
	})

	t.Run("mobile money cannot be captured", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(requested(pendingPayment(), model.MethodMTN, "ref-1"), nil)

		_, err := f.svc.Capture(guestCtx(), paymentID)

		assertCode(t, err, http.StatusBadRequest)
	})
}

func TestPaymentService_HandleCallback(t *testing.T) {
	f := newFixture(t)

	payment := requested(pendingPayment(), model.MethodMTN, "ref-1")

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(payment, nil)
	f.runTx()
	f.bookings.EXPECT().LockByPayment(gomock.Any(), paymentID).Return(nil)
	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(payment, nil)

	err := f.svc.HandleCallback(context.Background(), model.MethodMTN, "ref-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"ref-1"}, f.mtn.Checks())
}

func TestPaymentService_VoidForBooking(t *testing.T) {
	tests := []struct {
		name      string
		payment   model.Payment
		want      model.Status
		wantEvent string
	}{
		{name: "pending is cancelled", payment: pendingPayment(), want: model.StatusCancelled, wantEvent: events.PaymentCancelled},
		{
			name:      "failed is cancelled",
			payment:   withStatus(pendingPayment(), model.StatusFailed),
			want:      model.StatusCancelled,
			wantEvent: events.PaymentCancelled,
		},
		{
			name:      "completed is refunded",
			payment:   withStatus(pendingPayment(), model.StatusCompleted),
			want:      model.StatusRefunded,
			wantEvent: events.PaymentRefunded,
		},
		{name: "missing payment is left alone", payment: model.Payment{}},
		{name: "refunded is left alone", payment: withStatus(pendingPayment(), model.StatusRefunded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(tt.payment, nil)

			if tt.want != "" {
				f.repo.EXPECT().Update(gomock.Any(), change{key: model.FieldStatus, value: string(tt.want)}, gomock.Any()).
					Return(int64(1), nil)
			}

			evt, err := f.svc.VoidForBooking(guestCtx(), bookingID)
			require.NoError(t, err)

			if tt.wantEvent == "" {
				assert.Nil(t, evt)

				return
			}

			require.NotNil(t, evt)
			assert.Equal(t, tt.wantEvent, evt.Type)
			assert.Equal(t, paymentID, evt.Key)

			data, ok := evt.Data.(dto.PaymentResponse)
			require.True(t, ok)
			assert.Equal(t, string(tt.want), data.Status)
		})
	}
}

func TestPaymentService_HostEarnings(t *testing.T) {
	hostCtx := shared.WithPrincipal(context.Background(), hostID, constant.RoleHost)

	t.Run("available", func(t *testing.T) {
		f := newFixture(t)
		revenue := []model.Revenue{{Currency: "USD", Total: decimal.RequireFromString("600")}}
		f.repo.EXPECT().SumCompletedByHost(gomock.Any(), hostID).Return(revenue, nil)

		got, err := f.svc.HostEarnings(hostCtx)

		require.NoError(t, err)
		assert.Equal(t, dto.EarningsResponse{Status: dto.EarningsAvailable, Revenue: revenue}, got)
	})

	t.Run("aggregation failure is unavailable, not zero", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().SumCompletedByHost(gomock.Any(), hostID).Return(nil, errors.New("timeout"))

		got, err := f.svc.HostEarnings(hostCtx)

		require.NoError(t, err)
		assert.Equal(t, dto.EarningsUnavailable, got.Status)
		assert.Nil(t, got.Revenue)
	})

	t.Run("guests are forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.HostEarnings(guestCtx())

		assertCode(t, err, http.StatusForbidden)
	})
}
