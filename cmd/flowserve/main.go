// Command flowserve runs the accessibility issue tracker: the issues
// component mounted on a chi router, with the browser runtime served under
// /assets/ and an optional PostgreSQL store.
package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/components/issues"
)

func main() {
	cfg := NewConfig()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Fatal("catalog load failed", zap.Error(err))
	}

	opts := []issues.OptionFn{
		issues.WithBasePath(cfg.BasePath),
		issues.WithLogger(logger.Named("issues")),
		issues.WithTheme(cfg.Theme, cfg.ThemeVariant),
		issues.WithCatalog(catalog),
	}

	var pgStore *issues.PostgresStore
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		pgStore, err = issues.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connect failed", zap.Error(err))
		}
		defer pgStore.Close()
		if err := pgStore.Seed(ctx, catalog); err != nil {
			logger.Fatal("database seed failed", zap.Error(err))
		}
		opts = append(opts, issues.WithStore(pgStore))
	}

	tracker, err := issues.New(opts...)
	if err != nil {
		logger.Fatal("component init failed", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(formflow.AssetsFS())))
	r.Get("/healthz", healthHandler(pgStore))
	r.Get("/", indexHandler(tracker, cfg.BasePath))

	handler := tracker.Handler()
	if cfg.BasePath == "" {
		r.Handle("/projects/*", handler)
		r.Handle("/issues/*", handler)
	} else {
		r.Route(cfg.BasePath, func(sub chi.Router) {
			sub.Handle("/projects/*", handler)
			sub.Handle("/issues/*", handler)
		})
	}

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}

	logger.Info("listening",
		zap.String("address", cfg.ServerAddress),
		zap.String("mode", cfg.Mode),
		zap.String("base_path", cfg.BasePath),
		zap.String("theme", cfg.Theme))

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		logger.Fatal("listen failed", zap.Error(err))
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func loadCatalog(cfg *Config) (issues.Catalog, error) {
	if cfg.CatalogPath != "" {
		return issues.LoadCatalogFile(cfg.CatalogPath)
	}
	return issues.DefaultCatalog()
}

// runMigrations applies the embedded migration set unless a directory of
// migration files was configured.
func runMigrations(cfg *Config) error {
	if cfg.MigrationsDir != "" {
		return issues.MigrateDir(cfg.DatabaseURL, cfg.MigrationsDir)
	}
	return issues.Migrate(cfg.DatabaseURL)
}

// healthHandler reports liveness, including a database ping when a Postgres
// store is in play.
func healthHandler(pg *issues.PostgresStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pg != nil {
			if err := pg.Ping(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// indexHandler redirects the root path to the first project's issues page.
func indexHandler(tracker *issues.Component, basePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := tracker.Store().Projects(r.Context())
		if err != nil || len(projects) == 0 {
			http.NotFound(w, r)
			return
		}
		target := basePath + "/projects/" + url.PathEscape(projects[0].ID) + "/issues"
		http.Redirect(w, r, target, http.StatusFound)
	}
}
