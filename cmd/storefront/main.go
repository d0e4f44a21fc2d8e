// Package main implements the storefront HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/elitestore/storefront/internal/app"
	"github.com/elitestore/storefront/internal/cart"
	"github.com/elitestore/storefront/internal/catalog"
	"github.com/elitestore/storefront/internal/config"
	"github.com/elitestore/storefront/internal/service"
	"github.com/elitestore/storefront/pkg/bootstrap"
	pkgconfig "github.com/elitestore/storefront/pkg/config"
	"github.com/elitestore/storefront/pkg/config/configloader"
	"github.com/elitestore/storefront/pkg/messaging"
	natsclient "github.com/elitestore/storefront/pkg/nats"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, loads the catalog and starts the HTTP and
// pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	storage, err := setupStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up cart storage: %w", err)
	}

	publisher, cleanup, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer cleanup()

	source := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout, logger)
	annotator := catalog.NewAnnotator(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))
	svc := service.NewService(source, annotator, storage, publisher, logger)

	// The startup fetch is one shot: a failure leaves the service in the
	// failed state answering 503 until a reload, it does not abort startup.
	if err := svc.Reload(ctx); err != nil {
		logger.Error("Initial catalog load failed, serving failed state", "error", err)
	}

	deps := app.SetupDependencies(svc, logger)
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupStorage builds the cart slot store selected by configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (cart.Storage, error) {
	switch cfg.Storage.Backend {
	case pkgconfig.StorageBackendMemory:
		return cart.NewMemoryStorage(), nil
	case pkgconfig.StorageBackendFile:
		return cart.NewFileStorage(cfg.Storage.File.Path)
	case pkgconfig.StorageBackendRedis:
		client, err := bootstrap.NewRedisClient(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.Timeout)
		if err != nil {
			return nil, err
		}
		return cart.NewRedisStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// setupPublisher builds the cart event publisher. When NATS is disabled,
// events are discarded. The returned cleanup closes the connection.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return messaging.NoopPublisher{}, func() {}, nil
	}

	nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := natsclient.EnsureStream(ctx, js, cfg.NATS.Stream, []string{messaging.CartUpdatedSubject}); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Cart events enabled", slog.String("stream", cfg.NATS.Stream))
	cleanup := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	return natsclient.NewNatsPublisher(js), cleanup, nil
}
