package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/config"
	"github.com/DoyleJ11/lane-scoring-backend/internal/httpapi"
	"github.com/DoyleJ11/lane-scoring-backend/internal/hub"
	"github.com/DoyleJ11/lane-scoring-backend/internal/leaderboard"
	"github.com/DoyleJ11/lane-scoring-backend/internal/lifecycle"
	"github.com/DoyleJ11/lane-scoring-backend/internal/logger"
	"github.com/DoyleJ11/lane-scoring-backend/internal/results"
	"github.com/DoyleJ11/lane-scoring-backend/internal/roster"
	"github.com/DoyleJ11/lane-scoring-backend/internal/session"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.Init(cfg.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opener, err := newOpener(ctx, cfg)
	if err != nil {
		return err
	}
	stores := store.NewManager(opener, log.Named("store"))
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("close stores", zap.Error(err))
		}
	}()

	h := hub.NewHub(context.Background(), log.Named("hub"))
	defer h.Shutdown()

	srv := httpapi.NewServer(httpapi.Deps{
		Events:      stores,
		Lifecycle:   lifecycle.NewController(stores, log.Named("lifecycle"), cfg.CodeMaxLen),
		Sessions:    session.NewAuthority(stores, log.Named("session")),
		Results:     results.NewRecorder(stores, log.Named("results")),
		Leaderboard: leaderboard.NewAggregator(stores),
		Roster:      roster.New(stores, log.Named("roster")),
		Hub:         h,
		Log:         log.Named("http"),
	}, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		OutboxSize:     cfg.OutboxSize,
		CodeMaxLen:     cfg.CodeMaxLen,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.SetupRoutes(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	// hub first so open websockets are closed before the server waits on them
	h.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newOpener(ctx context.Context, cfg config.Config) (store.Opener, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return store.NewPostgresOpener(ctx, cfg.PostgresDSN)
	default:
		return store.NewSQLiteOpener(cfg.DataDir)
	}
}
