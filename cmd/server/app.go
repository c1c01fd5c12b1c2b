package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mnemosyne-app/mnemo-api/internal/config"
	"github.com/mnemosyne-app/mnemo-api/internal/domain/srs"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/postgres"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
	"github.com/mnemosyne-app/mnemo-api/internal/service/auth"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// application holds the shared application dependencies so wiring and
// cleanup stay in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	nodeStore store.NodeStore
	cardStore store.CardStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	srsService       srs.Service
	hierarchy        service.HierarchyResolver
	stats            service.StatsAggregator
	deckService      service.DeckService
	sessionService   service.SessionService
}

// newApplication wires every store and service. Configuration, logging and
// the database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier(bcrypt.DefaultCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.nodeStore = postgres.NewPostgresNodeStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)

	app.srsService = srs.NewDefaultService()
	app.hierarchy = service.NewHierarchyResolver(app.nodeStore, app.cardStore, logger)
	app.stats = service.NewStatsAggregator(app.nodeStore, app.cardStore, db, logger)
	app.deckService = service.NewDeckService(app.nodeStore, app.cardStore, app.stats, db, logger)
	app.sessionService = service.NewSessionService(
		app.hierarchy,
		app.srsService,
		app.cardStore,
		app.stats,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
