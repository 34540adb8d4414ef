package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwizi/esg-advisor/internal/config"
	"github.com/dwizi/esg-advisor/internal/httpapi"
	"github.com/dwizi/esg-advisor/internal/store"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	httpServer *http.Server
}

func New(cfg config.Config, version string, logger *slog.Logger) (*Runtime, error) {
	sqlStore, err := OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	pipeline, err := NewPipeline(cfg, sqlStore, logger)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Config:  cfg,
		Store:   sqlStore,
		Replier: pipeline,
		Version: version,
		Logger:  logger.With("component", "httpapi"),
	})

	return &Runtime{
		cfg:    cfg,
		logger: logger,
		store:  sqlStore,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// OpenStore opens and migrates the summary database, creating its directory if needed.
func OpenStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(ctx); err != nil {
		sqlStore.Close()
		return nil, err
	}
	return sqlStore, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("esg-advisor starting", "addr", r.cfg.HTTPAddr, "llm_provider", r.cfg.LLMProvider, "timezone", r.cfg.Timezone)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := r.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
