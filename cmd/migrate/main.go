package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/database/migrations"
	"github.com/pageza/recipeshare/backend/internal/logging"
)

const usage = `usage: migrate [flags] <command>

commands:
  up        apply all pending migrations
  up-by-one apply the next pending migration
  down      roll back the last migration
  status    print the status of every migration
  version   print the current schema version
`

func main() {
	dsn := flag.String("dsn", "", "postgres connection string (defaults to the configured database)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.Component("migrate")
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load configuration")
		}
		*dsn = cfg.Database.DSN()
	}

	if err := run(context.Background(), *dsn, flag.Arg(0), logger); err != nil {
		logger.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("migration failed")
	}
}

func run(ctx context.Context, dsn, command string, logger zerolog.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, ".")
	case "up-by-one":
		return goose.UpByOneContext(ctx, db, ".")
	case "down":
		return goose.DownContext(ctx, db, ".")
	case "status":
		return goose.StatusContext(ctx, db, ".")
	case "version":
		version, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return err
		}
		logger.Info().Int64("version", version).Msg("current schema version")
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
