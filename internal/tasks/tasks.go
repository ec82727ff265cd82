package tasks

//go:generate go run go.uber.org/mock/mockgen -source=./tasks.go -destination=./mocks/tasks_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kodesha/config"
	"kodesha/infras/queue"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	TypeBookingComplete = "booking:complete"
	TypePaymentPoll     = "payment:poll"

	maxRetryDelay = 10 * time.Minute
)

type PollPayload struct {
	PaymentID string `json:"payment_id"`
}

// Enqueuer is the part of the asynq client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewBookingCompleteTask() *asynq.Task {
	return asynq.NewTask(TypeBookingComplete, nil)
}

func NewPaymentPollTask(paymentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PollPayload{PaymentID: paymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode poll payload: %w", err)
	}

	return asynq.NewTask(TypePaymentPoll, payload), nil
}

func DecodePollPayload(task *asynq.Task) (PollPayload, error) {
	var payload PollPayload

	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("invalid poll payload: %w", err)
	}

	if payload.PaymentID == "" {
		return payload, errors.New("invalid poll payload: missing payment id")
	}

	return payload, nil
}

// PollScheduler enqueues one bounded status poll per provider request.
type PollScheduler struct {
	client Enqueuer
	cfg    *config.Config
}

func NewPollScheduler(client Enqueuer, cfg *config.Config) *PollScheduler {
	return &PollScheduler{client: client, cfg: cfg}
}

// PollTaskID keys a poll to one provider request, so a payment re-requested after a failure gets a fresh poll.
func PollTaskID(paymentID, providerReference string) string {
	return TypePaymentPoll + ":" + paymentID + ":" + providerReference
}

func (p *PollScheduler) SchedulePoll(ctx context.Context, paymentID, providerReference string) error {
	task, err := NewPaymentPollTask(paymentID)
	if err != nil {
		return err
	}

	delay := time.Duration(p.cfg.Worker.PollDelaySeconds) * time.Second
	retention := time.Duration(p.cfg.Worker.PollTimeoutMinute) * time.Minute

	info, err := p.client.EnqueueContext(ctx, task,
		asynq.TaskID(PollTaskID(paymentID, providerReference)),
		asynq.Queue(queue.QueueCritical),
		asynq.MaxRetry(p.cfg.Worker.PollMaxRetry),
		asynq.ProcessIn(delay),
		asynq.Timeout(time.Minute),
		asynq.Retention(retention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		log.Debug().Str("payment_id", paymentID).Msg("payment poll already scheduled")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to enqueue payment poll: %w", err)
	}

	log.Info().Str("payment_id", paymentID).Str("task_id", info.ID).Dur("delay", delay).Msg("payment poll scheduled")

	return nil
}

// RetryDelay backs payment polls off exponentially from the configured base delay.
// Other tasks keep the asynq default.
func RetryDelay(cfg *config.Config) asynq.RetryDelayFunc {
	base := time.Duration(cfg.Worker.PollDelaySeconds) * time.Second
	if base <= 0 {
		base = 15 * time.Second
	}

	return func(n int, err error, task *asynq.Task) time.Duration {
		if task.Type() != TypePaymentPoll {
			return asynq.DefaultRetryDelayFunc(n, err, task)
		}

		delay := time.Duration(float64(base) * math.Pow(2, float64(n)))
		if delay <= 0 || delay > maxRetryDelay {
			return maxRetryDelay
		}

		return delay
	}
}

// RegisterPeriodic registers the completion sweep with the scheduler.
func RegisterPeriodic(scheduler *asynq.Scheduler, cfg *config.Config) error {
	id, err := scheduler.Register(cfg.Worker.SweepCron, NewBookingCompleteTask(),
		asynq.Queue(queue.QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to register completion sweep: %w", err)
	}

	log.Info().Str("entry_id", id).Str("cron", cfg.Worker.SweepCron).Msg("completion sweep registered")

	return nil
}
