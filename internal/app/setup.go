// Package app contains the application setup for the storefront service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/elitestore/storefront/internal/config"
	"github.com/elitestore/storefront/internal/service"
	"github.com/elitestore/storefront/internal/transport/rest"
	"github.com/elitestore/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Storefront service.StorefrontService
	Logger     *slog.Logger
}

func SetupDependencies(svc service.StorefrontService, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Storefront: svc,
		Logger:     logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by handler tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	storefrontHandler := rest.NewHandler(deps.Storefront, deps.Logger)
	storefrontHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
