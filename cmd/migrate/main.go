package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"tokensale-platform/config"
	"tokensale-platform/migrations"
	"tokensale-platform/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		down       = flag.Bool("down", false, "roll back all migrations instead of applying them")
		steps      = flag.Int("steps", 0, "apply exactly n migrations (negative rolls back)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal().Err(err).Msg("open embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "pgx5://"+trimScheme(cfg.Database.DSN()))
	if err != nil {
		log.Fatal().Err(err).Msg("init migrator")
	}
	defer m.Close()

	switch {
	case *steps != 0:
		err = m.Steps(*steps)
	case *down:
		err = m.Down()
	default:
		err = m.Up()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("schema already up to date")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatal().Err(verr).Msg("read schema version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
}

// trimScheme strips the postgres:// prefix so the DSN can be re-tagged
// with the pgx5 driver scheme expected by golang-migrate.
func trimScheme(dsn string) string {
	const prefix = "postgres://"
	if len(dsn) > len(prefix) && dsn[:len(prefix)] == prefix {
		return dsn[len(prefix):]
	}
	return dsn
}
