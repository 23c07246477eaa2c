package main

import (
	"context"
	"fmt"

	"github.com/tubeaccounts/backend/internal/config"
	"github.com/tubeaccounts/backend/internal/handlers"
	"github.com/tubeaccounts/backend/internal/media"
	"github.com/tubeaccounts/backend/internal/models"
	"github.com/tubeaccounts/backend/internal/services"
	"github.com/tubeaccounts/backend/internal/store"
	"github.com/tubeaccounts/backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg           *config.Config
	db            *gorm.DB
	tokens        *services.TokenIssuer
	userHandler   *handlers.UserHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, uploader, services.
func bootstrap(ctx context.Context, cfg *config.Config) (*appServices, error) {
	db, err := models.Open(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	uploader, err := media.New(ctx, cfg.Upload)
	if err != nil {
		return nil, fmt.Errorf("init %s uploader: %w", cfg.Upload.Driver, err)
	}

	tokens, err := services.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}

	accounts := services.NewAccountService(store.NewUserStore(db), uploader, tokens)

	logger.Info().
		Str("db_driver", cfg.Database.Driver).
		Str("upload_driver", cfg.Upload.Driver).
		Dur("access_ttl", tokens.AccessTTL()).
		Dur("refresh_ttl", tokens.RefreshTTL()).
		Msg("services initialized")

	return &appServices{
		cfg:           cfg,
		db:            db,
		tokens:        tokens,
		userHandler:   handlers.NewUserHandler(accounts, tokens, cfg),
		healthHandler: handlers.NewHealthHandler(db),
	}, nil
}

// shutdown releases the database connection pool.
func (s *appServices) shutdown() {
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
		return
	}
	logger.Info().Msg("Database closed")
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error", "fatal":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
