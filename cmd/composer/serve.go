package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	composer "github.com/goliatone/go-composer"
	"github.com/goliatone/go-composer/internal/config"
	"github.com/goliatone/go-composer/internal/server"
	"github.com/goliatone/go-composer/internal/store"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/submit"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP host for pages and forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				cfg.Listen = listen
			}
			if dir, _ := cmd.Flags().GetString("schemas"); dir != "" {
				cfg.SchemaDir = dir
			}
			if backend, _ := cmd.Flags().GetString("store"); backend != "" {
				cfg.Store.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			handler, st, err := buildServer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("composer server listening", "addr", srv.Addr, "schemas", cfg.SchemaDir, "store", cfg.Store.Backend)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case sig := <-shutdown:
				logger.Info("shutting down", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("graceful shutdown did not complete", "err", err)
					return srv.Close()
				}
				return nil
			}
		},
	}
	cmd.Flags().String("listen", "", "Listen address (overrides config)")
	cmd.Flags().String("schemas", "", "Directory of page and form schemas to seed the store with")
	cmd.Flags().String("store", "", "Store backend: memory or redis")
	return cmd
}

// buildServer wires the store, renderers, gate options and metrics registry
// from cfg.
func buildServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (http.Handler, store.Store, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := seedStore(ctx, st, cfg.SchemaDir, logger); err != nil {
		st.Close()
		return nil, nil, err
	}

	facade := []composer.Option{
		composer.WithLogger(logger),
		composer.WithHoneypotName(cfg.Forms.Honeypot),
		composer.WithTemplatesDir(cfg.TemplatesDir),
	}
	compiler, err := composer.NewCompiler(facade...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	renderer, err := composer.NewPageRenderer(facade...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	options := []server.Option{
		server.WithLogger(logger),
		server.WithCompiler(compiler),
		server.WithRenderer(renderer),
		server.WithRegistry(registry),
		server.WithGateOptions(
			submit.WithPolicy(policy),
			submit.WithTrapDelay(cfg.Submit.TrapDelay, cfg.Submit.TrapCeiling),
		),
	}
	if cfg.Submit.Endpoint != "" {
		endpoint := cfg.Submit.Endpoint
		transport := submit.HTTPTransport{Client: &http.Client{Timeout: cfg.Submit.Timeout}}
		options = append(options, server.WithSubmitHandler(submit.HandlerFunc(func(ctx context.Context, ev *submit.Event) error {
			ev.Action = endpoint
			return transport.Handle(ctx, ev)
		})))
	}

	srv, err := server.New(st, options...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return srv.Handler(), st, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store.Backend != config.BackendRedis {
		return store.NewMemory(), nil
	}
	r := cfg.Store.Redis
	st := store.NewRedis(r.Addr, r.Password, r.DB, store.WithPrefix(r.Prefix), store.WithTTL(r.TTL))
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// seedStore loads dir into st. A missing directory leaves the store as is.
func seedStore(ctx context.Context, st store.Store, dir string, logger *slog.Logger) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("schema directory not found", "dir", dir)
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	bundle, err := schema.LoadDir(os.DirFS(dir))
	if err != nil {
		return err
	}
	if err := store.Seed(ctx, st, bundle); err != nil {
		return err
	}
	logger.Info("schemas loaded", "pages", len(bundle.Pages), "forms", len(bundle.Forms))
	return nil
}
