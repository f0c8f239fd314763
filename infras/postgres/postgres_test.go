package postgres_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/config"
	"roombook/infras/postgres"
)

func TestEndpoint_DSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "test_"
	cfg.DB.Postgres.Write.Host = "db.internal"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Username = "booker"
	cfg.DB.Postgres.Write.Password = "p@ss/word"
	cfg.DB.Postgres.Write.Name = "roombook"
	cfg.DB.Postgres.Write.SSLMode = "disable"
	cfg.DB.Postgres.Write.Timezone = "Asia/Jakarta"

	dsn := postgres.WriteEndpoint(cfg).DSN(url.Values{"x-migrations-table": {"schema_migrations"}})

	parsed, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db.internal:5432", parsed.Host)
	assert.Equal(t, "/test_roombook", parsed.Path)

	secret, _ := parsed.User.Password()
	assert.Equal(t, "p@ss/word", secret)

	query := parsed.Query()
	assert.Equal(t, "disable", query.Get("sslmode"))
	assert.Equal(t, "Asia/Jakarta", query.Get("timezone"))
	assert.Equal(t, "schema_migrations", query.Get("x-migrations-table"))
}

func TestEndpoint_DSN_OmitsUnsetOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Read.Host = "localhost"
	cfg.DB.Postgres.Read.Port = "5433"
	cfg.DB.Postgres.Read.Name = "roombook"

	parsed, err := url.Parse(postgres.ReadEndpoint(cfg).DSN(nil))
	require.NoError(t, err)

	assert.Empty(t, parsed.RawQuery)
	assert.Equal(t, "/roombook", parsed.Path)
}
