package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"kodesha/config"
	"kodesha/infras/otel"
	"kodesha/infras/postgres"
	bookingModel "kodesha/internal/domains/booking/model"
	bookingRepository "kodesha/internal/domains/booking/repository"
	"kodesha/internal/domains/payment/model"
	"kodesha/internal/domains/payment/model/dto"
	"kodesha/internal/domains/payment/provider"
	"kodesha/internal/domains/payment/repository"
	"kodesha/internal/events"
	"kodesha/shared"
	"kodesha/shared/constant"
	gDto "kodesha/shared/dto"
	"kodesha/shared/failure"
	"kodesha/shared/metrics"
	gRepo "kodesha/shared/repository"
	"kodesha/shared/timezone"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Outcome describes what a reconciliation did to the stored payment.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomePending   Outcome = "pending"
)

type Reconciliation struct {
	Outcome          Outcome
	Status           model.Status
	BookingConfirmed bool
}

// PollScheduler queues a bounded background status check for request-to-pay rails.
type PollScheduler interface {
	SchedulePoll(ctx context.Context, paymentID, providerReference string) error
}

type Payment interface {
	GetOrCreate(ctx context.Context, bookingID string) (dto.PaymentResponse, error)
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
	SelectMethod(ctx context.Context, id string, req dto.SelectMethodRequest) (dto.PaymentResponse, error)
	RequestPayment(ctx context.Context, id string) (dto.RequestPaymentResponse, error)
	Capture(ctx context.Context, id string) (dto.PaymentStatusResponse, error)
	CheckStatus(ctx context.Context, id string) (dto.PaymentStatusResponse, error)
	Refresh(ctx context.Context, id string) (Reconciliation, error)
	HandleCallback(ctx context.Context, method model.Method, providerReference string) error
	Reconcile(ctx context.Context, id string, result provider.Result) (Reconciliation, error)
	VoidForBooking(ctx context.Context, bookingID string) (*events.Event, error)
	HostEarnings(ctx context.Context) (dto.EarningsResponse, error)
}

type serviceImpl struct {
	repo      repository.Payment
	bookings  bookingRepository.Booking
	registry  *provider.Registry
	tx        gRepo.Transactor
	poller    PollScheduler
	publisher events.Publisher
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Payment,
	bookings bookingRepository.Booking,
	registry *provider.Registry,
	tx gRepo.Transactor,
	poller PollScheduler,
	publisher events.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:      repo,
		bookings:  bookings,
		registry:  registry,
		tx:        tx,
		poller:    poller,
		publisher: publisher,
		cfg:       cfg,
		otel:      otel,
	}
}

// GetOrCreate returns the payment of a booking, drafting one with the configured defaults on first use.
func (s *serviceImpl) GetOrCreate(ctx context.Context, bookingID string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.GetOrCreate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.bookings.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !booking.IsGuest(user) {
		return res, failure.ResourceRestrictedError
	}

	payment, err := s.findByBooking(ctx, bookingID)
	if err != nil {
		return res, err
	}

	if payment.ID != constant.Empty {
		res.FromModel(payment)

		return res, nil
	}

	if booking.Status != bookingModel.StatusPending {
		return res, failure.Conflict(fmt.Sprintf("booking is %s and cannot be paid for", booking.Status)) // nolint:wrapcheck
	}

	method, err := model.ParseMethod(s.cfg.Payment.DefaultMethod)
	if err != nil {
		method = model.MethodCardGateway
	}

	payment = dto.NewPayment(booking.ID, method, booking.TotalPrice, s.cfg.Payment.DefaultCurrency, user)

	err = s.repo.Insert(ctx, payment)
	if postgres.ErrorCode(err) == constant.PqErrorCodeUniqueViolation {
		log.Info().Str("booking_id", bookingID).Msg("payment created concurrently, reading it back")

		payment, err = s.findByBooking(ctx, bookingID)
		if err != nil {
			return res, err
		}

		res.FromModel(payment)

		return res, nil
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to create payment")

		return res, fmt.Errorf("failed to create payment: %w", err)
	}

	payment.BookingReference = booking.Reference
	payment.BookingStatus = string(booking.Status)
	payment.BookingTotal = booking.TotalPrice
	payment.GuestID = booking.GuestID
	payment.HostID = booking.HostID

	res.FromModel(payment)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !payment.IsPayer(user) && payment.HostID != user {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(payment)

	return res, nil
}

// SelectMethod switches the rail of an open payment and re-derives the amount from the booking total,
// so a currency conversion is applied exactly once.
func (s *serviceImpl) SelectMethod(ctx context.Context, id string, req dto.SelectMethodRequest) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.SelectMethod")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	method, err := model.ParseMethod(req.Method)
	if err != nil {
		return res, failure.Validation(model.FieldMethod, "unsupported payment method") // nolint:wrapcheck
	}

	payment, err := s.findAsPayer(ctx, id)
	if err != nil {
		return res, err
	}

	if !payment.Status.Open() || payment.BookingStatus != string(bookingModel.StatusPending) {
		return res, failure.Conflict(fmt.Sprintf("payment is %s and can no longer change method", payment.Status)) // nolint:wrapcheck
	}

	if payment.Status == model.StatusPending && payment.Requested() {
		return res, failure.Conflict("payment already requested, check its status before switching method") // nolint:wrapcheck
	}

	amount := payment.BookingTotal
	currency := s.cfg.Payment.DefaultCurrency
	payer := constant.Empty

	if method.IsMobileMoney() {
		if req.PhoneNumber == constant.Empty {
			return res, failure.Validation("phone_number", "phone number is required for mobile money") // nolint:wrapcheck
		}

		payer, err = provider.NormalizeMSISDN(req.PhoneNumber, s.cfg.Payment.CountryCode)
		if err != nil {
			return res, failure.Validation("phone_number", err.Error()) // nolint:wrapcheck
		}

		rate, err := decimal.NewFromString(s.cfg.Payment.USDRate)
		if err != nil {
			log.Error().Err(err).Msg("invalid mobile money exchange rate")

			return res, fmt.Errorf("invalid mobile money exchange rate: %w", err)
		}

		amount = payment.BookingTotal.Mul(rate).Round(0)
		currency = s.cfg.Payment.MobileMoneyCurrency
	}

	user, _ := shared.Principal(ctx)
	changes := map[string]any{
		model.FieldMethod:            string(method),
		model.FieldAmount:            amount,
		model.FieldCurrency:          currency,
		model.FieldPayerContact:      payer,
		model.FieldStatus:            string(model.StatusPending),
		model.FieldProviderPaymentID: nil,
		model.FieldProviderReference: constant.Empty,
		model.FieldTransactionID:     constant.Empty,
		constant.FieldModifiedAt:     timezone.Now(),
		constant.FieldModifiedBy:     user,
	}

	affected, err := s.repo.Update(ctx, changes, guarded(id, model.StatusPending, model.StatusFailed))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to select payment method")

		return res, fmt.Errorf("failed to select payment method: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("payment changed, please reload") // nolint:wrapcheck
	}

	payment.Method = method
	payment.Amount = amount
	payment.Currency = currency
	payment.PayerContact = payer
	payment.Status = model.StatusPending
	payment.ProviderPaymentID = nil
	payment.ProviderReference = constant.Empty
	payment.TransactionID = constant.Empty

	res.FromModel(payment)

	return res, nil
}

// RequestPayment asks the rail to collect the payment. Repeated calls return the existing request.
func (s *serviceImpl) RequestPayment(ctx context.Context, id string) (res dto.RequestPaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.RequestPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.findAsPayer(ctx, id)
	if err != nil {
		return res, err
	}

	res.Method = string(payment.Method)

	if payment.Status == model.StatusPending && payment.Requested() {
		res.ProviderReference = payment.ProviderRef()
		res.Status = string(provider.StatusPending)

		return res, nil
	}

	if payment.Status != model.StatusPending {
		return res, failure.Conflict(fmt.Sprintf("payment is %s, select a payment method to try again", payment.Status)) // nolint:wrapcheck
	}

	if payment.BookingStatus != string(bookingModel.StatusPending) {
		return res, failure.Conflict(fmt.Sprintf("booking is %s and cannot be paid for", payment.BookingStatus)) // nolint:wrapcheck
	}

	if payment.Method.IsMobileMoney() && payment.PayerContact == constant.Empty {
		return res, failure.Validation("phone_number", "select mobile money with a phone number first") // nolint:wrapcheck
	}

	rail, err := s.registry.Get(payment.Method)
	if err != nil {
		return res, failure.Validation(model.FieldMethod, err.Error()) // nolint:wrapcheck
	}

	reference := fmt.Sprintf("%s-%d", payment.BookingReference, timezone.Now().Unix())

	claimed, err := s.claimRequest(ctx, id, reference)
	if err != nil {
		return res, err
	}

	if !claimed {
		return s.existingRequest(ctx, id)
	}

	resp, err := rail.RequestPayment(ctx, provider.Request{
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		PayerContact: payment.PayerContact,
		Reference:    reference,
		Note:         "Booking " + payment.BookingReference,
	})
	if err != nil {
		s.releaseRequest(ctx, id, reference)

		return res, providerFailure(err)
	}

	user, _ := shared.Principal(ctx)
	changes := map[string]any{
		model.FieldProviderPaymentID: resp.ProviderReference,
		constant.FieldModifiedAt:     timezone.Now(),
		constant.FieldModifiedBy:     user,
	}

	affected, err := s.repo.Update(ctx, changes, claimedBy(id, reference))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to store provider reference")

		return res, fmt.Errorf("failed to store provider reference: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("payment changed, please reload") // nolint:wrapcheck
	}

	if payment.Method.IsMobileMoney() {
		if err := s.poller.SchedulePoll(ctx, id, resp.ProviderReference); err != nil {
			log.Error().Err(err).Str("payment_id", id).Msg("failed to schedule payment poll")
		}
	}

	log.Info().Str("payment_id", id).Str("method", string(payment.Method)).Msg("payment requested")

	res.ProviderReference = resp.ProviderReference
	res.Status = string(provider.StatusPending)
	res.ApproveURL = resp.ApproveURL

	return res, nil
}

// Capture finalizes an approved order on rails that need it. Anything short of a completed capture fails the payment.
func (s *serviceImpl) Capture(ctx context.Context, id string) (res dto.PaymentStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.Capture")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.findAsPayer(ctx, id)
	if err != nil {
		return res, err
	}

	if payment.Status == model.StatusCompleted {
		return dto.PaymentStatusResponse{Status: string(payment.Status)}, nil
	}

	if payment.Status != model.StatusPending || !payment.Requested() {
		return res, failure.Conflict(fmt.Sprintf("payment is %s and has no order to capture", payment.Status)) // nolint:wrapcheck
	}

	rail, err := s.registry.Get(payment.Method)
	if err != nil {
		return res, failure.Validation(model.FieldMethod, err.Error()) // nolint:wrapcheck
	}

	capturer, ok := rail.(provider.Capturer)
	if !ok {
		return res, failure.BadRequestFromString(payment.Method.Label() + " payments are not captured") // nolint:wrapcheck
	}

	result, err := capturer.Capture(ctx, payment.ProviderRef())
	if err != nil {
		return res, providerFailure(err)
	}

	if result.Status != provider.StatusSuccessful {
		result.Status = provider.StatusFailed
	}

	rec, err := s.Reconcile(ctx, id, result)
	if err != nil {
		return res, err
	}

	return statusResponse(rec, result), nil
}

// CheckStatus answers settled payments locally and asks the rail otherwise.
func (s *serviceImpl) CheckStatus(ctx context.Context, id string) (res dto.PaymentStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.CheckStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.findAsPayer(ctx, id)
	if err != nil {
		return res, err
	}

	if payment.Status != model.StatusPending {
		return dto.PaymentStatusResponse{Status: string(payment.Status)}, nil
	}

	if !payment.Requested() {
		return dto.PaymentStatusResponse{Status: string(payment.Status), Message: "payment has not been requested yet"}, nil
	}

	rec, result, err := s.refresh(ctx, payment)
	if err != nil {
		return res, err
	}

	return statusResponse(rec, result), nil
}

// Refresh re-reads the rail status of a requested payment. It is run by the background poller.
func (s *serviceImpl) Refresh(ctx context.Context, id string) (rec Reconciliation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.Refresh")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payment, err := s.find(ctx, id)
	if err != nil {
		return rec, err
	}

	if payment.Status != model.StatusPending || !payment.Requested() {
		return Reconciliation{Outcome: OutcomeIgnored, Status: payment.Status}, nil
	}

	rec, _, err = s.refresh(ctx, payment)

	return rec, err
}

// HandleCallback treats a provider notification as a hint only: the status is always re-read from the rail.
func (s *serviceImpl) HandleCallback(ctx context.Context, method model.Method, providerReference string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.HandleCallback")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if providerReference == constant.Empty {
		return failure.Validation("reference", "provider reference is required") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldProviderPaymentID, Value: providerReference, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldMethod, Value: string(method), Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	payment, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("reference", providerReference).Msg("failed to get payment for callback")

		return fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return failure.NotFound("payment not found") // nolint:wrapcheck
	}

	if payment.Status != model.StatusPending {
		return nil
	}

	_, _, err = s.refresh(ctx, payment)

	return err
}

// Reconcile applies a rail result to the stored payment under a row lock. It is idempotent and a completed
// payment never regresses. Metrics and events are emitted only after the transaction commits.
func (s *serviceImpl) Reconcile(ctx context.Context, id string, result provider.Result) (rec Reconciliation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.Reconcile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var payment model.Payment

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.bookings.LockByPayment(ctx, id); err != nil {
			return err
		}

		var err error

		payment, err = s.repo.GetForUpdate(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			return err
		}

		if payment.ID == constant.Empty {
			return failure.NotFound("payment not found") // nolint:wrapcheck
		}

		rec, err = s.apply(ctx, &payment, result)

		return err
	})
	if err != nil {
		var fail *failure.Failure
		if errors.As(err, &fail) {
			return rec, err
		}

		log.Error().Err(err).Str("payment_id", id).Msg("failed to reconcile payment")

		return rec, fmt.Errorf("failed to reconcile payment: %w", err)
	}

	metrics.IncPaymentReconciled(string(payment.Method), string(result.Status), string(rec.Outcome))

	if rec.Outcome != OutcomeApplied {
		return rec, nil
	}

	var data dto.PaymentResponse
	data.FromModel(payment)

	switch rec.Status {
	case model.StatusCompleted:
		s.publisher.PublishPayment(ctx, events.New(events.PaymentCompleted, payment.ID, data))
	case model.StatusFailed:
		s.publisher.PublishPayment(ctx, events.New(events.PaymentFailed, payment.ID, data))
	}

	if rec.BookingConfirmed {
		metrics.IncBookingTransition(string(bookingModel.StatusConfirmed))
		s.publisher.PublishBooking(ctx, events.New(events.BookingConfirmed, payment.BookingID, map[string]string{
			"booking_id":        payment.BookingID,
			"booking_reference": payment.BookingReference,
			"payment_id":        payment.ID,
		}))
	}

	return rec, nil
}

func (s *serviceImpl) apply(ctx context.Context, payment *model.Payment, result provider.Result) (Reconciliation, error) {
	rec := Reconciliation{Outcome: OutcomeIgnored, Status: payment.Status}
	logger := log.With().Str("payment_id", payment.ID).Str("result", string(result.Status)).Str("status", string(payment.Status)).Logger()

	switch result.Status {
	case provider.StatusSuccessful:
		switch payment.Status {
		case model.StatusCompleted:
			rec.Outcome = OutcomeDuplicate

			return rec, nil
		case model.StatusCancelled, model.StatusRefunded:
			logger.Warn().Msg("provider reports success for a voided payment, manual refund required")

			return rec, nil
		}

		now := timezone.Now()
		changes := map[string]any{
			model.FieldStatus:        string(model.StatusCompleted),
			model.FieldTransactionID: result.TransactionID,
			model.FieldPaidAt:        now,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: constant.RoleSystem,
		}

		if result.PayerContact != constant.Empty && payment.PayerContact == constant.Empty {
			changes[model.FieldPayerContact] = result.PayerContact
			payment.PayerContact = result.PayerContact
		}

		if _, err := s.repo.Update(ctx, changes, shared.FilterByID(payment.ID, model.FieldID, model.TableName)); err != nil {
			return rec, err
		}

		payment.Status = model.StatusCompleted
		payment.TransactionID = result.TransactionID
		payment.PaidAt = &now

		confirmed, err := s.bookings.Transition(ctx, payment.BookingID, bookingModel.StatusConfirmed, constant.RoleSystem, bookingModel.StatusPending)
		if err != nil {
			return rec, err
		}

		if confirmed == 0 {
			logger.Info().Str("booking_id", payment.BookingID).Msg("booking no longer pending, left unchanged")
		}

		rec = Reconciliation{Outcome: OutcomeApplied, Status: model.StatusCompleted, BookingConfirmed: confirmed > 0}
		logger.Info().Msg("payment completed")
	case provider.StatusFailed:
		if payment.Status != model.StatusPending {
			return rec, nil
		}

		changes := map[string]any{
			model.FieldStatus:        string(model.StatusFailed),
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: constant.RoleSystem,
		}

		if _, err := s.repo.Update(ctx, changes, shared.FilterByID(payment.ID, model.FieldID, model.TableName)); err != nil {
			return rec, err
		}

		payment.Status = model.StatusFailed
		rec = Reconciliation{Outcome: OutcomeApplied, Status: model.StatusFailed}
		logger.Info().Str("reason", result.Reason).Msg("payment failed")
	default:
		rec.Outcome = OutcomePending
	}

	return rec, nil
}

// VoidForBooking settles the payment of a cancelled booking. It joins the caller's transaction and returns
// the event to publish once that transaction commits, or nil when nothing changed.
func (s *serviceImpl) VoidForBooking(ctx context.Context, bookingID string) (voided *events.Event, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.VoidForBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	payment, err := s.repo.GetForUpdate(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	to, eventType := model.StatusCancelled, events.PaymentCancelled

	switch payment.Status {
	case model.StatusPending, model.StatusFailed:
	case model.StatusCompleted:
		to, eventType = model.StatusRefunded, events.PaymentRefunded
	default:
		return nil, nil // nolint:nilnil
	}

	user, _ := shared.Principal(ctx)
	now := timezone.Now()
	changes := map[string]any{
		model.FieldStatus:        string(to),
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if _, err := s.repo.Update(ctx, changes, shared.FilterByID(payment.ID, model.FieldID, model.TableName)); err != nil {
		return nil, fmt.Errorf("failed to void payment: %w", err)
	}

	if to == model.StatusRefunded {
		log.Warn().Str("payment_id", payment.ID).Str("booking_id", bookingID).Msg("completed payment marked refunded, provider refund required")
	}

	payment.Status = to

	var data dto.PaymentResponse
	data.FromModel(payment)

	evt := events.New(eventType, payment.ID, data)

	return &evt, nil
}

// HostEarnings sums completed payments of the caller's properties. A failed aggregation is reported as
// unavailable, never as zero.
func (s *serviceImpl) HostEarnings(ctx context.Context) (res dto.EarningsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Payment.HostEarnings")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, role := shared.Principal(ctx)
	if role != constant.RoleHost && role != constant.RoleAdmin {
		return res, failure.ForbiddenError
	}

	revenue, err := s.repo.SumCompletedByHost(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("host_id", user).Msg("failed to aggregate host earnings")

		return dto.EarningsResponse{Status: dto.EarningsUnavailable}, nil
	}

	return dto.EarningsResponse{Status: dto.EarningsAvailable, Revenue: revenue}, nil
}

// refresh reads the rail status of payment and reconciles it. Rail errors come back as failures.
func (s *serviceImpl) refresh(ctx context.Context, payment model.Payment) (Reconciliation, provider.Result, error) {
	rail, err := s.registry.Get(payment.Method)
	if err != nil {
		return Reconciliation{}, provider.Result{}, failure.Validation(model.FieldMethod, err.Error()) // nolint:wrapcheck
	}

	result, err := rail.CheckStatus(ctx, payment.ProviderRef())
	if err != nil {
		return Reconciliation{}, result, providerFailure(err)
	}

	rec, err := s.Reconcile(ctx, payment.ID, result)

	return rec, result, err
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Payment, error) {
	payment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to get payment")

		return payment, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return payment, failure.NotFound("payment not found") // nolint:wrapcheck
	}

	return payment, nil
}

func (s *serviceImpl) findAsPayer(ctx context.Context, id string) (model.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return payment, err
	}

	user, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && !payment.IsPayer(user) {
		return payment, failure.ResourceRestrictedError
	}

	return payment, nil
}

func (s *serviceImpl) findByBooking(ctx context.Context, bookingID string) (model.Payment, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	payment, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get payment")

		return payment, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// claimRequest marks the payment as being requested under reference. Only one caller wins the claim.
func (s *serviceImpl) claimRequest(ctx context.Context, id, reference string) (bool, error) {
	changes := map[string]any{
		model.FieldProviderReference: reference,
		constant.FieldModifiedAt:     timezone.Now(),
	}

	affected, err := s.repo.Update(ctx, changes, claimedBy(id, constant.Empty))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to claim payment request")

		return false, fmt.Errorf("failed to claim payment request: %w", err)
	}

	return affected > 0, nil
}

// releaseRequest hands a claim back after the rail refused it so the payer can retry.
func (s *serviceImpl) releaseRequest(ctx context.Context, id, reference string) {
	changes := map[string]any{
		model.FieldProviderReference: constant.Empty,
		constant.FieldModifiedAt:     timezone.Now(),
	}

	if _, err := s.repo.Update(context.WithoutCancel(ctx), changes, claimedBy(id, reference)); err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to release payment request")
	}
}

func (s *serviceImpl) existingRequest(ctx context.Context, id string) (res dto.RequestPaymentResponse, err error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if payment.Status != model.StatusPending || !payment.Requested() {
		return res, failure.Conflict("payment request already in progress") // nolint:wrapcheck
	}

	res.Method = string(payment.Method)
	res.ProviderReference = payment.ProviderRef()
	res.Status = string(provider.StatusPending)

	return res, nil
}

func guarded(id string, from ...model.Status) gDto.FilterGroup {
	statuses := make([]string, len(from))
	for i, status := range from {
		statuses[i] = string(status)
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{
				Field:    model.FieldStatus,
				ArgName:  "current_status",
				Value:    statuses,
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}
}

// claimedBy matches a pending payment whose request is held under reference and not yet sent.
func claimedBy(id, reference string) gDto.FilterGroup {
	group := guarded(id, model.StatusPending)
	group.Filters = append(group.Filters,
		gDto.Filter{
			Field:    model.FieldProviderReference,
			ArgName:  "claimed_reference",
			Value:    reference,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		},
		gDto.Filter{Field: model.FieldProviderPaymentID, Operator: gDto.FilterIsNull, Table: model.TableName},
	)

	return group
}

func statusResponse(rec Reconciliation, result provider.Result) dto.PaymentStatusResponse {
	res := dto.PaymentStatusResponse{Status: string(rec.Status)}

	switch {
	case rec.Outcome == OutcomePending:
		res.Message = dto.MessageProcessing
	case rec.Status == model.StatusFailed:
		res.Reason = result.Reason
	}

	return res
}

// providerFailure hides rail details from callers: bad payer input is a validation error,
// everything else is reported as a temporary outage.
func providerFailure(err error) error {
	var invalid *provider.InvalidInputError
	if errors.As(err, &invalid) {
		return failure.Validation(invalid.Field, invalid.Message) // nolint:wrapcheck
	}

	log.Error().Err(err).Msg("payment provider unavailable")

	return failure.ServiceUnavailable(constant.ResponseErrorPaymentUnavailable) // nolint:wrapcheck
}
