package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"time"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/logging"
	"github.com/pageza/recipeshare/backend/internal/seed"
)

func main() {
	n := flag.Int("n", 200, "number of recipes to insert")
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

	now := time.Now()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(*n)))
	recipes := seed.Recipes(rng, *n, now)
	if err := seed.InsertRecipes(ctx, db, recipes); err != nil {
		logger.Fatal().Err(err).Msg("failed to insert recipes")
	}

	logger.Info().Int("count", len(recipes)).Msg("inserted recipes")
}
