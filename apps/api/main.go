package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rshetty-99/ai-marketplace-sub008/contracts"
	slugshandler "github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/handler"
	slugsrepo "github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/repo"
	slugsservice "github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	platformlogging "github.com/rshetty-99/ai-marketplace-sub008/platform/go/logging"
	platformmiddleware "github.com/rshetty-99/ai-marketplace-sub008/platform/go/middleware"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/persistence"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/slug"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	SlugPolicyPath  string        `env:"SLUG_POLICY_PATH"` // optional override of the built-in policy
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "slugs-api",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	policy := slug.DefaultPolicy()
	if cfg.SlugPolicyPath != "" {
		policy, err = slug.LoadPolicy(cfg.SlugPolicyPath)
		if err != nil {
			logger.Fatal("load slug policy", zap.String("path", cfg.SlugPolicyPath), zap.Error(err))
		}
		logger.Info("loaded slug policy override", zap.String("path", cfg.SlugPolicyPath))
	}

	store, err := persistence.NewSlugStore(ctx, pool)
	if err != nil {
		logger.Fatal("init slug store", zap.Error(err))
	}
	repo := slugsrepo.NewPostgresRepository(store)
	service := slugsservice.New(repo, policy)
	httpHandler := slugshandler.New(service, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Public redirect routes stay off the versioned mount so published
	// profile URLs survive API version bumps.
	httpHandler.PublicRoutes(rootRouter)

	slugsValidator, err := platformmiddleware.NewSpecValidator(contracts.SlugsYAML)
	if err != nil {
		logger.Fatal("build contract validator", zap.Error(err))
	}

	apiRouter := chi.NewRouter()
	apiRouter.Group(func(r chi.Router) {
		r.Use(slugsValidator)
		httpHandler.Routes(r)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting slugs api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
