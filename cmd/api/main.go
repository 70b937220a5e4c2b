package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/dlimdlimdlim/bankcore/internal/auth"
	"github.com/dlimdlimdlim/bankcore/internal/config"
	"github.com/dlimdlimdlim/bankcore/internal/events"
	eventskafka "github.com/dlimdlimdlim/bankcore/internal/events/kafka"
	"github.com/dlimdlimdlim/bankcore/internal/handler"
	"github.com/dlimdlimdlim/bankcore/internal/logging"
	"github.com/dlimdlimdlim/bankcore/internal/middleware"
	"github.com/dlimdlimdlim/bankcore/internal/obs"
	"github.com/dlimdlimdlim/bankcore/internal/repository"
	"github.com/dlimdlimdlim/bankcore/internal/service"
	"github.com/dlimdlimdlim/bankcore/internal/service/transaction"
)

func main() {
	// best effort; the environment wins over .env
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("bankcore-api", cfg.LogLevel, cfg.AppEnv)
	obs.Init()

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions := auth.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLMin)*time.Minute)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPub.Close()
		publisher = kafkaPub
		slog.Info("event publishing enabled", "brokers", cfg.KafkaBrokers)
	}

	uow := repository.NewUnitOfWork(db)
	accountRepo := repository.NewAccountRepository(db)
	cardRepo := repository.NewCardRepository(db)

	transactionSvc := transaction.NewService(uow, sessions, publisher)
	accountSvc := service.NewAccountService(accountRepo)

	transactionHandler := handler.NewTransactionHandler(transactionSvc)
	accountHandler := handler.NewAccountHandler(accountSvc, sessions)
	sessionHandler := handler.NewSessionHandler(cardRepo, sessions)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", sessionHandler.Create)
	mux.HandleFunc("POST /api/v1/accounts", accountHandler.Open)
	mux.HandleFunc("GET /api/v1/accounts/{id}", accountHandler.Get)
	mux.HandleFunc("POST /api/v1/accounts/{id}/transactions", transactionHandler.Create)
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", obs.Handler())

	var root http.Handler = mux
	root = middleware.Logging(root)
	root = obs.Instrument(root)
	root = middleware.Tracing(root)
	root = middleware.Recovery(root)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
