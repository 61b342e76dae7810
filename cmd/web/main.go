package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/esports-bracket/internal/config"
	"github.com/AdamBeresnev/esports-bracket/internal/db"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	"github.com/AdamBeresnev/esports-bracket/internal/service"
	"github.com/AdamBeresnev/esports-bracket/internal/store"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

type app struct {
	sessionManager    *scs.SessionManager
	userStore         *store.UserStore
	userService       *service.UserService
	tournamentService *service.TournamentService
	bracketService    *service.BracketService
	matchService      *service.MatchService
	corsOrigin        string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	database, err := db.InitDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.DBDriver, cfg.MigrationsURL()); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sessionStore(cfg, database.DB)

	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)

	a := &app{
		sessionManager:    sessionManager,
		userStore:         userStore,
		userService:       service.NewUserService(userStore),
		tournamentService: service.NewTournamentService(database, tournamentStore, userStore),
		bracketService:    service.NewBracketService(database, tournamentStore),
		matchService:      service.NewMatchService(database, tournamentStore),
		corsOrigin:        cfg.CORSOrigin,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// Sessions live in the application database so they survive restarts.
func sessionStore(cfg *config.Config, database *sql.DB) scs.Store {
	if cfg.DBDriver == config.DriverPostgres {
		return postgresstore.New(database)
	}
	return sqlite3store.New(database)
}
