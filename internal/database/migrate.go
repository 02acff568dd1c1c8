package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/database/migrations"
	"github.com/pageza/recipeshare/backend/internal/models"
)

// RunMigrations brings the schema up to date. Postgres runs the embedded
// goose migrations; sqlite, used for local runs and tests, is auto-migrated
// from the models.
func RunMigrations(ctx context.Context, db *gorm.DB, logger zerolog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info().Msg("using GORM auto-migration for SQLite")
		return db.WithContext(ctx).AutoMigrate(models.All()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// gooseLogger adapts zerolog to goose.Logger
type gooseLogger struct {
	logger zerolog.Logger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msgf(format, v...)
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Info().Msgf(format, v...)
}
