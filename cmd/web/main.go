package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/screwyprof/airdrop/pkg/bech32addr"
	"github.com/screwyprof/airdrop/pkg/logger"
	"github.com/screwyprof/airdrop/pkg/metrics"
	"github.com/screwyprof/airdrop/pkg/pgxdb"
	"github.com/screwyprof/airdrop/web/config"
	"github.com/screwyprof/airdrop/web/handler"
	"github.com/screwyprof/airdrop/web/store/pgxstore"
)

var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// A missing .env is fine; real environment variables win
	_ = godotenv.Load()

	cfg := config.New()

	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Airdrop Snapshot Web API starting",
		slog.String("version", version),
		slog.String("date", date),
	)

	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	finder, finderCloser := pgxstore.New(db)
	defer finderCloser()

	opts := []handler.Option{handler.WithQueryTimeout(cfg.QueryTimeout)}
	if cfg.AddressPrefix != "" {
		normalizer, err := bech32addr.New(cfg.AddressPrefix)
		if err != nil {
			log.ErrorContext(ctx, "Invalid address prefix", slog.Any("error", err))
			os.Exit(1)
		}
		opts = append(opts, handler.WithNormalizer(normalizer))
	}

	mux := http.NewServeMux()
	handler.NewGetSnapshots(finder, opts...).AddRoutes(mux)

	var root http.Handler = mux
	if cfg.MetricsEnabled {
		reg := metrics.New()
		mux.Handle("GET /metrics", reg.Handler())
		root = reg.Middleware(mux)
	}

	root = logger.NewMiddleware(log)(root)

	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		finderCloser()
		os.Exit(1)
	}

	log.InfoContext(ctx, "Server exited gracefully")
}
