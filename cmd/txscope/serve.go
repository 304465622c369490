package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/txscope"
	"github.com/aretw0/txscope/internal/config"
	"github.com/aretw0/txscope/internal/logging"
	httpadapter "github.com/aretw0/txscope/pkg/adapters/http"
	redisadapter "github.com/aretw0/txscope/pkg/adapters/redis"
	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/observability"
	"github.com/aretw0/txscope/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo KV server",
	Long:  `Starts an HTTP server exposing a KV API where every request runs inside coordinated transactional sessions against Redis.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(slog.LevelInfo)

		coord, store, err := buildCoordinator(cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing coordinator: %v\n", err)
			os.Exit(1)
		}
		if store != nil {
			defer store.Close()
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: newRouter(coord),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting txscope server", "addr", srv.Addr, "bypass", cfg.Bypass)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("server error", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildCoordinator wires the Redis client, templates and metrics from the
// configuration. In bypass mode no store connection is made at all.
func buildCoordinator(cfg *config.Config, logger *slog.Logger) (*txscope.Coordinator, *redisadapter.Client, error) {
	opts := []txscope.Option{
		txscope.WithLogger(logger),
		txscope.WithMetrics(observability.NewCollector(prometheus.DefaultRegisterer)),
		txscope.WithBypass(cfg.Bypass),
	}

	templates := make([]txscope.Template, 0, len(cfg.Templates))
	for _, tpl := range cfg.Templates {
		sessOpts, err := tpl.SessionOptions()
		if err != nil {
			return nil, nil, err
		}
		templates = append(templates, txscope.NewTemplate(tpl.Name, txscope.WithSessionOptions(sessOpts)))
	}
	if len(templates) > 0 {
		opts = append(opts, txscope.WithTemplates(templates...))
	}

	// A typed nil pointer must not leak into the interface: the coordinator
	// treats a nil client as "no store configured".
	var store *redisadapter.Client
	var client ports.Client
	if !cfg.Bypass {
		store = redisadapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			redisadapter.WithPrefix(cfg.Redis.Prefix))
		client = store
	}

	coord, err := txscope.New(client, opts...)
	if err != nil {
		return nil, nil, err
	}
	return coord, store, nil
}

func newRouter(coord *txscope.Coordinator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Put("/kv/{key}", httpadapter.Handler(coord, putKey))
	r.Get("/kv/{key}", httpadapter.Handler(coord, getKey))
	r.Delete("/kv/{key}", httpadapter.Handler(coord, deleteKey))

	return r
}

func putKey(w http.ResponseWriter, r *http.Request) error {
	sess, err := txscope.Default(r.Context())
	if err != nil {
		return err
	}
	if sess == nil {
		// Bypass mode: accepted, nothing persisted.
		w.WriteHeader(http.StatusAccepted)
		return nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return &domain.ValidationError{Field: "body", Reason: "must not be empty"}
	}

	if err := sess.Set(r.Context(), chi.URLParam(r, "key"), string(body)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func getKey(w http.ResponseWriter, r *http.Request) error {
	sess, err := txscope.Default(r.Context())
	if err != nil {
		return err
	}
	if sess == nil {
		w.WriteHeader(http.StatusAccepted)
		return nil
	}

	val, err := sess.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			http.NotFound(w, r)
			return nil
		}
		return err
	}
	_, err = w.Write([]byte(val))
	return err
}

func deleteKey(w http.ResponseWriter, r *http.Request) error {
	sess, err := txscope.Default(r.Context())
	if err != nil {
		return err
	}
	if sess == nil {
		w.WriteHeader(http.StatusAccepted)
		return nil
	}

	if err := sess.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
