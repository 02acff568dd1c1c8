package main

import (
	"context"
	"flag"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/logging"
	"github.com/pageza/recipeshare/backend/internal/seed"
)

func main() {
	password := flag.String("password", "testpassword123", "password for every demo account")
	flag.Parse()

	logger := logging.Component("seed")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg.Database, logging.Component("database"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db, logging.Component("migrations")); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	created, err := seed.InsertUsers(ctx, db, seed.DemoUsers, *password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create demo users")
	}

	for _, u := range seed.DemoUsers {
		logger.Info().Str("email", u.Email).Bool("verified", u.Verified).Msg("demo account")
	}
	logger.Info().Int("created", created).Msg("demo users ready")
}
