package postgres

//nolint:revive
import (
	"errors"
	"net"
	"net/url"
	"roombook/config"
	"roombook/shared/constant"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	maxIdleConnections = 10
	maxOpenConnections = 10
	connMaxLifetime    = 30 * time.Minute
)

// Connection splits reads from writes. Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one of the read or write targets in the configuration.
type Endpoint struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Timezone string
	SSLMode  string
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	return &Connection{
		Read:  connect("read", ReadEndpoint(cfg), pg.MaxRetry, pg.RetryWaitTime),
		Write: connect("write", WriteEndpoint(cfg), pg.MaxRetry, pg.RetryWaitTime),
	}
}

func ReadEndpoint(cfg *config.Config) Endpoint {
	read := cfg.DB.Postgres.Read

	return Endpoint{
		Host:     read.Host,
		Port:     read.Port,
		Username: read.Username,
		Password: read.Password,
		Name:     cfg.DB.Postgres.Prefix + read.Name,
		Timezone: read.Timezone,
		SSLMode:  read.SSLMode,
	}
}

func WriteEndpoint(cfg *config.Config) Endpoint {
	write := cfg.DB.Postgres.Write

	return Endpoint{
		Host:     write.Host,
		Port:     write.Port,
		Username: write.Username,
		Password: write.Password,
		Name:     cfg.DB.Postgres.Prefix + write.Name,
		Timezone: write.Timezone,
		SSLMode:  write.SSLMode,
	}
}

// DSN renders endpoint as a postgres URL. extra is appended to the query,
// which is how golang-migrate receives its own options.
func (e Endpoint) DSN(extra url.Values) string {
	query := url.Values{}
	for key, values := range extra {
		query[key] = values
	}

	if e.SSLMode != constant.Empty {
		query.Set("sslmode", e.SSLMode)
	}

	// sessions must agree with the application timezone or DATE/TIME columns drift
	if e.Timezone != constant.Empty {
		query.Set("timezone", e.Timezone)
	}

	dsn := url.URL{
		Scheme:   driverName,
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Name,
		RawQuery: query.Encode(),
	}

	if e.Username != constant.Empty {
		dsn.User = url.UserPassword(e.Username, e.Password)
	}

	return dsn.String()
}

func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}

func connect(name string, endpoint Endpoint, maxRetry, waitSeconds int) *sqlx.DB {
	logger := log.With().
		Str("name", name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", endpoint.Name).
		Logger()

	var lastErr error

	for attempt := 1; attempt <= max(maxRetry, 1); attempt++ {
		db, err := sqlx.Connect(driverName, endpoint.DSN(nil))
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		lastErr = err

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")
		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	logger.Fatal().Err(lastErr).Msg("Giving up on database")

	return nil
}
