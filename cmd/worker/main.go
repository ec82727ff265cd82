package main

import (
	"kodesha/config"
	"kodesha/di"
	"kodesha/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg, logger.ComponentWorker)

	worker := di.InitializeWorker()
	if err := worker.Run(); err != nil {
		log.Fatal().Err(err).Msg("worker exited")
	}
}
