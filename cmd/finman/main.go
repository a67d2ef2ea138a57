package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"finman/internal/cli"
	apphttp "finman/internal/http"
	"finman/internal/log"
	"finman/internal/services"
	"finman/internal/token"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	auth := services.NewAuthService(store, cfg.BcryptCost)
	ledger := services.NewLedgerService(store)
	query := services.NewQueryService(store)
	stats := services.NewStatsService(store)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	srv := apphttp.NewServer(
		apphttp.Options{Addr: ":" + cfg.Port, StatsCacheTTL: cfg.StatsCacheTTL},
		auth, ledger, query, stats, tokens, logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting finman server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
