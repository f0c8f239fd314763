package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"roombook/config"
	"roombook/infras/postgres"
	"roombook/shared/constant"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationsSource = "file://migrations/postgres"

type Action string

const (
	ActionUp     Action = "up"
	ActionDown   Action = "down"
	ActionStepUp Action = "step-up"
	ActionDrop   Action = "drop"
)

var ErrUnknownAction = errors.New("unknown migration action")

// ParseAction accepts up, down, step-up and drop.
func ParseAction(value string) (Action, error) {
	switch action := Action(value); action {
	case ActionUp, ActionDown, ActionStepUp, ActionDrop:
		return action, nil
	default:
		return constant.Empty, fmt.Errorf("%w: %q", ErrUnknownAction, value)
	}
}

// Run applies action to the write database. ErrNoChange is not an error.
func Run(cfg *config.Config, action Action) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}

	options := url.Values{}
	if table := cfg.DB.Postgres.MigrationTable; table != constant.Empty {
		options.Set("x-migrations-table", table)
	}

	mig, err := migrate.New(migrationsSource, postgres.WriteEndpoint(cfg).DSN(options))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer func() {
		if sourceErr, dbErr := mig.Close(); sourceErr != nil || dbErr != nil {
			log.Warn().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("failed to close migrate instance")
		}
	}()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", action, err)
	}

	version, dirty, versionErr := mig.Version()
	if versionErr != nil && !errors.Is(versionErr, migrate.ErrNilVersion) {
		log.Warn().Err(versionErr).Msg("failed to read schema version")
	}

	log.Info().Str("action", string(action)).Uint("version", version).Bool("dirty", dirty).Msg("Database migration finished")

	return nil
}

func Up(cfg *config.Config) error {
	return Run(cfg, ActionUp)
}
