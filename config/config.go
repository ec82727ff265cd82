package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Provider holds the credentials and endpoint of one payment rail.
type Provider struct {
	APIKey      string `envconfig:"API_KEY"`
	APISecret   string `envconfig:"API_SECRET"`
	BaseURL     string `envconfig:"BASE_URL"`
	Environment string `envconfig:"ENVIRONMENT"  default:"sandbox"`
	MaxRetry    uint   `envconfig:"MAX_RETRY"    default:"3"`
	TimeoutSecs int    `envconfig:"TIMEOUT_SECS" default:"30"`
}

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
			Queue struct {
				DB int `envconfig:"DB" default:"1"`
			} `envconfig:"QUEUE"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret string `envconfig:"ACCESS_SECRET"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry        uint   `envconfig:"MAX_RETRY"         default:"5"`
			RetryWaitTime   int    `envconfig:"RETRY_WAIT_TIME"   default:"2"`
			MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS"    default:"10"`
			MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS"    default:"10"`
			ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" default:"300"`
			MigrationTable  string `envconfig:"MIGRATION_TABLE"`
			AutoMigrate     bool   `envconfig:"AUTO_MIGRATE"`
			Prefix          string `envconfig:"PREFIX"`
			Read            struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable               bool     `envconfig:"ENABLE"`
		Brokers              []string `envconfig:"BROKERS"`
		ConsumerGroup        string   `envconfig:"CONSUMER_GROUP"`
		PublishTimeoutMillis int      `envconfig:"PUBLISH_TIMEOUT_MILLIS" default:"3000"`
		SASL                 struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			Booking string `envconfig:"BOOKING" default:"booking-events"`
			Payment string `envconfig:"PAYMENT" default:"payment-events"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	Worker struct {
		Concurrency       int    `envconfig:"CONCURRENCY"         default:"10"`
		SweepCron         string `envconfig:"SWEEP_CRON"          default:"@every 1h"`
		PollMaxRetry      int    `envconfig:"POLL_MAX_RETRY"      default:"10"`
		PollDelaySeconds  int    `envconfig:"POLL_DELAY_SECONDS"  default:"15"`
		PollTimeoutMinute int    `envconfig:"POLL_TIMEOUT_MINUTE" default:"30"`
	} `envconfig:"WORKER"`

	Payment struct {
		DefaultCurrency     string `envconfig:"DEFAULT_CURRENCY"      default:"USD"`
		DefaultMethod       string `envconfig:"DEFAULT_METHOD"        default:"card_gateway"`
		MobileMoneyCurrency string `envconfig:"MOBILE_MONEY_CURRENCY" default:"RWF"`
		USDRate             string `envconfig:"USD_RATE"              default:"1300"`
		CountryCode         string `envconfig:"COUNTRY_CODE"          default:"250"`
		Providers           struct {
			CardGateway struct {
				Provider
				BrandName string `envconfig:"BRAND_NAME"`
				ReturnURL string `envconfig:"RETURN_URL"`
				CancelURL string `envconfig:"CANCEL_URL"`
			} `envconfig:"CARD_GATEWAY"`
			MTN struct {
				Provider
				SubscriptionKey string `envconfig:"SUBSCRIPTION_KEY"`
				CallbackURL     string `envconfig:"CALLBACK_URL"`
			} `envconfig:"MTN"`
			Airtel struct {
				Provider
				Country  string `envconfig:"COUNTRY"  default:"RW"`
				Currency string `envconfig:"CURRENCY" default:"RWF"`
			} `envconfig:"AIRTEL"`
		} `envconfig:"PROVIDERS"`
	} `envconfig:"PAYMENT"`

	External struct {
		Otel struct {
			Endpoint    string  `envconfig:"ENDPOINT"`
			SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
		} `envconfig:"OTEL"`
	}
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
