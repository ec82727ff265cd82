package postgres

//nolint:revive
import (
	"context"
	"kodesha/config"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const driverName = "postgres"

// Connection splits reads and writes. Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one side of the read/write pair.
type Endpoint struct {
	Name     string
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  mustConnect(config, ReadEndpoint(config)),
		Write: mustConnect(config, WriteEndpoint(config)),
	}
}

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func WriteEndpoint(config *config.Config) Endpoint {
	write := config.DB.Postgres.Write

	return Endpoint{
		Name:     "write",
		Host:     write.Host,
		Port:     write.Port,
		Username: write.Username,
		Password: write.Password,
		DBName:   getDBName(config, write.Name),
		SSLMode:  write.SSLMode,
	}
}

func ReadEndpoint(config *config.Config) Endpoint {
	read := config.DB.Postgres.Read

	return Endpoint{
		Name:     "read",
		Host:     read.Host,
		Port:     read.Port,
		Username: read.Username,
		Password: read.Password,
		DBName:   getDBName(config, read.Name),
		SSLMode:  read.SSLMode,
	}
}

// DSN renders the endpoint as a lib/pq URL. Credentials are escaped.
func (e Endpoint) DSN() string {
	dsn := url.URL{
		Scheme: driverName,
		User:   url.UserPassword(e.Username, e.Password),
		Host:   net.JoinHostPort(e.Host, e.Port),
		Path:   "/" + e.DBName,
	}

	if e.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": []string{e.SSLMode}}.Encode()
	}

	return dsn.String()
}

// Connect dials the endpoint with constant-interval retries bounded by DB_POSTGRES_MAX_RETRY.
func Connect(ctx context.Context, config *config.Config, endpoint Endpoint) (*sqlx.DB, error) {
	wait := time.Duration(config.DB.Postgres.RetryWaitTime) * time.Second
	tries := max(config.DB.Postgres.MaxRetry, 1)

	db, err := backoff.Retry(ctx, func() (*sqlx.DB, error) {
		return sqlx.ConnectContext(ctx, driverName, endpoint.DSN())
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(wait)),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Error().
				Err(err).
				Str("name", endpoint.Name).
				Str("host", endpoint.Host).
				Str("dbName", endpoint.DBName).
				Dur("retry_in", next).
				Msg("Failed connecting to database, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DB.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(config.DB.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DB.Postgres.ConnMaxLifetime) * time.Second)

	log.Info().
		Str("name", endpoint.Name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", endpoint.DBName).
		Msg("Connected to database")

	return db, nil
}

func mustConnect(config *config.Config, endpoint Endpoint) *sqlx.DB {
	db, err := Connect(context.Background(), config, endpoint)
	if err != nil {
		log.Fatal().Err(err).Str("name", endpoint.Name).Msg("Could not connect to database")
	}

	return db
}
