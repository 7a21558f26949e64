package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/charisk/newswire/api"
	"github.com/charisk/newswire/config"
	"github.com/charisk/newswire/index"
	"github.com/charisk/newswire/internal/cache"
	"github.com/charisk/newswire/internal/events"
	"github.com/charisk/newswire/internal/logger"
	"github.com/charisk/newswire/internal/metrics"
	"github.com/charisk/newswire/internal/news"
	"github.com/charisk/newswire/services"
	"github.com/charisk/newswire/store"
)

const appVersion = "1.0.0"

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to YAML config file")
		port       = flag.Int("port", 0, "Override the HTTP port from the config")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Newswire - news search service with fuzzy fallback\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                              # Start with defaults (sqlite, port 8080)\n", os.Args[0])
		fmt.Printf("  %s --config newswire.yaml       # Start with a config file\n", os.Args[0])
		fmt.Printf("  %s --port 9000                  # Override the HTTP port\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("Newswire v%s\n", appVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store (driver %q): %w", cfg.Store.Driver, err)
	}
	defer cleanup()

	m := metrics.New(nil)

	opts := []news.Option{news.WithMetrics(m)}

	if cfg.Cache.Enabled() {
		qc, err := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("connecting to cache: %w", err)
		}
		defer qc.Close()
		opts = append(opts, news.WithCache(qc))
		slog.Info("query cache enabled", "addr", cfg.Cache.Addr)
	}

	ix := index.New()

	var consumer *events.Consumer
	if cfg.Events.Enabled() {
		producer := events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		defer producer.Close()
		opts = append(opts, news.WithProducer(producer))
		consumer = events.NewConsumer(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.ConsumerGroup, ix)
		slog.Info("eventing enabled", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}

	svc, err := news.NewService(st, ix, cfg.Search, opts...)
	if err != nil {
		return err
	}

	// A failed bulk load is not fatal: the service answers through the
	// fallback matcher until a reindex succeeds.
	if err := svc.Initialize(ctx); err != nil {
		slog.Error("initial index load failed, falling back to fuzzy search", "error", err)
	} else {
		stats := svc.Stats()
		slog.Info("index initialized", "documents", stats.TotalDocuments)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, svc, st, m)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if consumer != nil {
		group.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	return group.Wait()
}

// openStore builds the configured record store and returns it with its
// cleanup function.
func openStore(ctx context.Context, cfg config.StoreConfig) (services.NewsStore, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pg, err := store.NewPostgres(cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	case "sqlite":
		sq, err := store.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := sq.EnsureSchema(ctx); err != nil {
			sq.Close()
			return nil, nil, err
		}
		return sq, func() { sq.Close() }, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
