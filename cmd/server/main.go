package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	jwttoken "pixkeys/internal/jwt_token"
	"pixkeys/internal/pixkey"
	"pixkeys/internal/pixkey/handler"
	"pixkeys/internal/platform/config"
	"pixkeys/internal/platform/httpserver"
	"pixkeys/internal/platform/logger"
	"pixkeys/internal/platform/metrics"
	httptransport "pixkeys/internal/transport/http"
	authmw "pixkeys/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := pixkey.Open(ctx, cfg, pixkey.WithLogger(log), pixkey.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer func() {
		// drains queued lifecycle events before the broker client goes away
		if err := registry.Close(); err != nil {
			log.Error("failed to release resources", "error", err)
		}
	}()

	var handlerOpts []handler.Option
	if cfg.Auth.JWTSigningKey != "" {
		tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
		handlerOpts = append(handlerOpts, handler.WithAuth(authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(tokens), log)))
	} else {
		log.Warn("JWT_SIGNING_KEY not set; mutating routes are unauthenticated")
	}
	keys := handler.New(registry.Engine, registry.Resolver, log, handlerOpts...)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   registry.Checks,
	}, keys)
	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pix key registry",
			"addr", cfg.Server.Addr,
			"store", cfg.Database.Driver,
			"cache", cfg.Redis.URL != "",
			"events", len(cfg.Kafka.Brokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
