package tasks

import (
	"fmt"
	"kodesha/config"
	"kodesha/infras/queue"
	"kodesha/shared/timezone"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Worker runs the task server and the periodic scheduler side by side.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	processor *Processor
	cfg       *config.Config
}

func NewWorker(cfg *config.Config, processor *Processor) *Worker {
	return &Worker{
		server:    queue.NewServer(cfg, RetryDelay(cfg)),
		scheduler: queue.NewScheduler(cfg, timezone.GetLocation()),
		processor: processor,
		cfg:       cfg,
	}
}

// Run blocks until the process receives SIGTERM or SIGINT.
func (w *Worker) Run() error {
	if err := RegisterPeriodic(w.scheduler, w.cfg); err != nil {
		return err
	}

	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer w.scheduler.Shutdown()

	log.Info().Int("concurrency", w.cfg.Worker.Concurrency).Msg("Starting up task worker.")

	if err := w.server.Run(w.processor.Mux()); err != nil {
		return fmt.Errorf("task worker stopped: %w", err)
	}

	return nil
}
