// Package app wires configuration, repositories, services and the HTTP
// server into a runnable dashboard backend.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/config"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/physical"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/infrastructure/render"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/infrastructure/repository/postgres"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/infrastructure/repository/spreadsheet"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/interfaces/httpapi"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/cache"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/scheduler"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

type App struct {
	cfg       config.Config
	logger    *logging.Logger
	store     *cache.Store
	db        *sqlx.DB
	artifacts *usecase.ArtifactService
	scheduler *scheduler.Scheduler
	server    *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	store, err := cache.NewStore(cfg.CacheTTL,
		cache.WithComputeTimeout(cfg.CacheComputeTimeout),
		cache.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cache store")
	}

	a := &App{cfg: cfg, logger: logger, store: store}

	var matchRepo physical.MatchRepository
	var trainingRepo physical.TrainingRepository
	if cfg.DBURL != "" {
		a.db, err = postgres.Connect(ctx, cfg.DBURL)
		if err != nil {
			store.Close()
			return nil, errors.Wrap(err, "connect gps database")
		}
		gps := postgres.NewPhysicalRepository(a.db)
		matchRepo, trainingRepo = gps, gps
		logger.Info("gps source: postgres")
	} else {
		matchRepo = spreadsheet.NewMatchRepository(cfg.MatchesFile)
		trainingRepo = spreadsheet.NewTrainingRepository(cfg.TrainingFile)
		logger.Info("gps source: spreadsheets", "matches", cfg.MatchesFile, "training", cfg.TrainingFile)
	}

	statsRepo := spreadsheet.NewTeamStatsRepository(cfg.TeamAveragesFile)
	resultsRepo := spreadsheet.NewResultsRepository(cfg.ResultsFile)

	a.artifacts = usecase.NewArtifactService(store, cfg.CacheEnabled, logger)
	usecase.Catalog{
		Physical:        usecase.NewPhysicalService(matchRepo, resultsRepo, logger),
		Microcycles:     usecase.NewMicrocycleService(trainingRepo, matchRepo, logger),
		Rankings:        usecase.NewRankingsService(statsRepo, cfg.HighlightTeam, cfg.RankingMetrics, cfg.InverseMetrics, logger),
		PlayingStyle:    usecase.NewPlayingStyleService(statsRepo, cfg.HighlightTeam, logger),
		Stats:           usecase.NewStatsService(statsRepo, cfg.HighlightTeam, logger),
		Renderer:        render.New(chart.DefaultPalette()),
		CurrentMatchday: cfg.CurrentMatchday,
	}.RegisterAll(a.artifacts)

	if cfg.AutoRefreshEnabled {
		a.scheduler, err = scheduler.New(scheduler.Config{
			RefreshInterval: cfg.RefreshInterval,
			SweepSchedule:   cfg.SweepSchedule,
			ProbeInterval:   cfg.HealthProbeInterval,
		}, scheduler.Jobs{
			Refresh: func(ctx context.Context) error {
				_, err := a.artifacts.ForceRefresh(ctx, "")
				return err
			},
			Sweep: a.artifacts.SweepExpired,
			Probe: a.probeSources,
		}, logger)
		if err != nil {
			a.closeInfra()
			return nil, errors.Wrap(err, "create scheduler")
		}
	}

	var schedulerStatus httpapi.SchedulerStatus
	if a.scheduler != nil {
		schedulerStatus = a.scheduler.Status
	}

	handler := httpapi.NewHandler(a.artifacts, schedulerStatus, logger)
	a.server = httpapi.NewServer(httpapi.ServerConfig{
		Addr:               cfg.HTTPAddr,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ServiceName:        cfg.ServiceName,
	}, handler, logger)

	return a, nil
}

// Run serves HTTP and starts the maintenance scheduler. It blocks until
// the context is canceled or the server fails, then shuts down cleanly.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown(context.Background())
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown(context.Background())
	}
}

func (a *App) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var firstErr error
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if err := a.server.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	a.closeInfra()

	return firstErr
}

func (a *App) closeInfra() {
	a.store.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// probeSources checks that the configured sources are still reachable
// and logs how stale the cache is, so a stuck export shows up in the
// logs well before someone opens the dashboard.
func (a *App) probeSources(ctx context.Context) {
	if a.cfg.DBURL != "" {
		if err := a.db.PingContext(ctx); err != nil {
			a.logger.WarnContext(ctx, "gps database unreachable", "error", err)
		}
	} else {
		for _, path := range []string{a.cfg.MatchesFile, a.cfg.TrainingFile} {
			if _, err := os.Stat(path); err != nil {
				a.logger.WarnContext(ctx, "source workbook missing", "path", path, "error", err)
			}
		}
	}
	for _, path := range []string{a.cfg.TeamAveragesFile, a.cfg.ResultsFile} {
		if _, err := os.Stat(path); err != nil {
			a.logger.WarnContext(ctx, "source workbook missing", "path", path, "error", err)
		}
	}

	health := a.artifacts.Health(ctx)
	if !health.LastStored.IsZero() {
		a.logger.InfoContext(ctx, "cache health",
			"entries", health.CacheEntries,
			"last_store_age", time.Since(health.LastStored).Round(time.Second).String(),
		)
	}
}
