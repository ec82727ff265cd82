package tasks

import (
	"context"
	"errors"
	"fmt"
	"kodesha/infras/otel"
	bookingService "kodesha/internal/domains/booking/service"
	paymentService "kodesha/internal/domains/payment/service"
	"kodesha/shared"
	"kodesha/shared/constant"
	"kodesha/shared/failure"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

var errStillPending = errors.New("payment still pending at provider")

type Processor struct {
	bookings bookingService.Booking
	payments paymentService.Payment
	otel     otel.Otel
}

func NewProcessor(bookings bookingService.Booking, payments paymentService.Payment, otel otel.Otel) *Processor {
	return &Processor{
		bookings: bookings,
		payments: payments,
		otel:     otel,
	}
}

func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingComplete, p.HandleBookingComplete)
	mux.HandleFunc(TypePaymentPoll, p.HandlePaymentPoll)

	return mux
}

func (p *Processor) HandleBookingComplete(ctx context.Context, _ *asynq.Task) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelTaskScopeName, constant.OtelTaskScopeName+"."+TypeBookingComplete)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx = shared.WithPrincipal(ctx, constant.RoleSystem, constant.RoleSystem)

	count, err := p.bookings.CompletePast(ctx)
	if err != nil {
		return err
	}

	scope.SetAttribute("completed", int(count))

	return nil
}

// HandlePaymentPoll returns an error while the provider still reports PENDING so asynq retries with backoff.
// Once retries are exhausted the payment simply stays pending.
func (p *Processor) HandlePaymentPoll(ctx context.Context, task *asynq.Task) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelTaskScopeName, constant.OtelTaskScopeName+"."+TypePaymentPoll)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payload, err := DecodePollPayload(task)
	if err != nil {
		log.Error().Err(err).Msg("dropping payment poll")

		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	ctx = shared.WithPrincipal(ctx, constant.RoleSystem, constant.RoleSystem)

	rec, err := p.payments.Refresh(ctx, payload.PaymentID)
	if failure.GetCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err != nil {
		return err
	}

	if rec.Outcome == paymentService.OutcomePending {
		retried, _ := asynq.GetRetryCount(ctx)
		log.Debug().Str("payment_id", payload.PaymentID).Int("retried", retried).Msg("payment still pending")

		return errStillPending
	}

	log.Info().Str("payment_id", payload.PaymentID).Str("status", string(rec.Status)).Str("outcome", string(rec.Outcome)).Msg("payment poll finished")

	return nil
}
