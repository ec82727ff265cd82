package logger

import (
	"io"
	"kodesha/config"
	"kodesha/shared/constant"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ComponentAPI     = "api"
	ComponentWorker  = "worker"
	ComponentMigrate = "migrate"
)

// InitLogger replaces the global logger. Production writes JSON lines, every other env a console writer.
// Each line carries the service name and the process component.
func InitLogger(config *config.Config, component string) {
	InitLoggerTo(config, component, defaultOutput(config))
}

func InitLoggerTo(config *config.Config, component string, output io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", config.App.Name).
		Str("component", component).
		Logger()

	SetLogLevel(config)
}

func defaultOutput(config *config.Config) io.Writer {
	if config.Server.Env == constant.ServerEnvProduction {
		return os.Stdout
	}

	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel applies SERVER_LOG_LEVEL. Unset or invalid levels fall back to info in production and debug elsewhere.
func SetLogLevel(config *config.Config) {
	fallback := zerolog.DebugLevel
	if config.Server.Env == constant.ServerEnvProduction {
		fallback = zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil || config.Server.LogLevel == "" {
		level = fallback
		log.Debug().Str("loglevel", level.String()).Msg("No valid log level configured, using default.")
	}

	zerolog.SetGlobalLevel(level)
}
