package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"kodesha/config"
	"kodesha/shared/constant"
	"kodesha/shared/logger"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()

	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	t.Cleanup(func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	})
}

func TestInitLoggerTo(t *testing.T) {
	restore(t)

	cfg := &config.Config{}
	cfg.App.Name = "kodesha"
	cfg.Server.Env = constant.ServerEnvProduction
	cfg.Server.LogLevel = "info"

	var buf bytes.Buffer
	logger.InitLoggerTo(cfg, logger.ComponentWorker, &buf)

	log.Info().Str("payment_id", "p-1").Msg("payment poll scheduled")
	log.Debug().Msg("dropped below info")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))

	assert.Equal(t, "kodesha", line["service"])
	assert.Equal(t, logger.ComponentWorker, line["component"])
	assert.Equal(t, "p-1", line["payment_id"])
	assert.Contains(t, line, "time")
}

func TestErrorWithStack(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	log.Logger = log.Output(&buf)

	logger.ErrorWithStack(errors.New("test error"))

	assert.Contains(t, buf.String(), "test error")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{name: "explicit debug", env: constant.ServerEnvProduction, logLevel: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "explicit warn", env: constant.ServerEnvDevelopment, logLevel: "warn", expectedLevel: zerolog.WarnLevel},
		{name: "disabled", env: constant.ServerEnvDevelopment, logLevel: "disabled", expectedLevel: zerolog.Disabled},
		{name: "unset in production", env: constant.ServerEnvProduction, expectedLevel: zerolog.InfoLevel},
		{name: "unset in development", env: constant.ServerEnvDevelopment, expectedLevel: zerolog.DebugLevel},
		{name: "invalid in production", env: constant.ServerEnvProduction, logLevel: "loud", expectedLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore(t)

			cfg := &config.Config{}
			cfg.Server.Env = tt.env
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}
