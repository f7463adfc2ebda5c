package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/StediMove/Invoice-2.0-sub000/internal/config"
	"github.com/StediMove/Invoice-2.0-sub000/internal/db"
	"github.com/StediMove/Invoice-2.0-sub000/internal/server"
	"github.com/StediMove/Invoice-2.0-sub000/internal/services"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	log := newLogger(cfg.Env)

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("database setup failed")
	}
	if *migrateOnlyFlag {
		log.Info().Msg("migrations completed")
		return
	}

	invSvc := services.NewInvoiceService(dbConn)
	drafts := services.NewDraftService(services.DraftConfig{
		APIKey: cfg.OpenAIKey,
		Model:  cfg.OpenAIModel,
	}, log)

	// Sweep sent invoices past due once at boot, then daily.
	if n, err := invSvc.MarkOverdue(time.Now()); err != nil {
		log.Warn().Err(err).Msg("overdue sweep failed")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("invoices marked overdue")
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := invSvc.MarkOverdue(time.Now()); err != nil {
				log.Warn().Err(err).Msg("overdue sweep failed")
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(dbConn, drafts, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

// newLogger returns a console logger in development and JSON elsewhere.
func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
