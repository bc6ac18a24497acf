package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"productapi/internal/catalog"
	"productapi/internal/config"
	"productapi/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := kit.NewLogger(service, "info")
		boot.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	log.Info("config loaded", zap.Stringer("config", cfg))

	keys, err := newKeyChecker(cfg)
	if err != nil {
		log.Fatal("api key setup failed", zap.Error(err))
	}

	s := &catalog.Server{
		Store: catalog.NewStore(),
		Keys:  keys,
		Log:   log,
	}

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if routes, ok := h.(chi.Routes); ok {
		log.Info("endpoints available", zap.Strings("routes", catalog.Endpoints(routes)))
	}

	err = kit.RunHTTPServer(context.Background(), kit.ServerConfig{
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, h, log)
	if err != nil {
		log.Error("http server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// newKeyChecker prefers the bcrypt hash when both forms are configured.
func newKeyChecker(cfg *config.Config) (*catalog.KeyChecker, error) {
	if cfg.Auth.APIKeyHash != "" {
		return catalog.NewHashedKeyChecker(cfg.Auth.APIKeyHash)
	}
	return catalog.NewKeyChecker(cfg.Auth.APIKey)
}
