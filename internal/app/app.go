package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"prediction-dashboard/internal/alerting"
	"prediction-dashboard/internal/api"
	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/dashboard"
	"prediction-dashboard/internal/observability"
	"prediction-dashboard/internal/pricefeed"
	"prediction-dashboard/internal/scheduler"
	"prediction-dashboard/internal/status"
	"prediction-dashboard/internal/store"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newPriceFetcher() pricefeed.SpotPriceFetcher {
	return pricefeed.NewCoinbase(pricefeed.Options{
		BaseURL:   a.Config.PriceFeed.BaseURL,
		Pair:      a.Config.PriceFeed.Pair,
		Timeout:   a.Config.PriceFeed.RequestTimeout,
		UserAgent: a.Config.PriceFeed.UserAgent,
	}, a.Logger)
}

func (a *App) newResolver() *status.Resolver {
	return status.NewResolver(status.Thresholds{
		DelayedAfter: a.Config.Status.DelayedAfter,
		OfflineAfter: a.Config.Status.OfflineAfter,
	})
}

func (a *App) newWatcher(metrics *observability.Metrics) *alerting.Watcher {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	var notifier alerting.Notifier
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		notifier = alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	if notifier == nil {
		a.Logger.Warn().Msg("alerting enabled but no channel configured")
		return nil
	}
	return alerting.NewWatcher(notifier, a.Config.Alerting.Cooldown, metrics, a.Logger)
}

func (a *App) openStore(ctx context.Context, metrics *observability.Metrics) (*store.Store, func(), error) {
	pool, err := store.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	st := store.NewStore(pool, metrics)
	closer := func() {
		st.Close()
	}
	return st, closer, nil
}

func (a *App) newService(st *store.Store, metrics *observability.Metrics) *dashboard.Service {
	return dashboard.New(
		a.Config,
		st, st, st,
		a.newPriceFetcher(),
		a.newResolver(),
		a.newWatcher(metrics),
		metrics,
		a.Logger,
	)
}

// Run executes the long-running dashboard: refresh scheduler plus HTTP
// query surface, until interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := observability.NewMetrics(a.Config.App.Name)

	st, closeStore, err := a.openStore(ctx, metrics)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := a.newService(st, metrics)

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: a.Config.Scheduler.RunImmediately,
	}, a.Logger)

	handler := api.NewHandler(svc, a.Logger)
	srv := &http.Server{
		Addr:         a.Config.Server.ListenAddr,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.Run(ctx, svc.Tick)
	}()

	a.Logger.Info().Msg("starting dashboard service")

	var runErr error
	select {
	case err := <-serverErr:
		runErr = err
		cancel()
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("http server shutdown failed")
	}

	if err := <-schedDone; err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("scheduler terminated with error")
		if runErr == nil {
			runErr = err
		}
	}

	a.Logger.Info().Msg("dashboard service stopped")
	return runErr
}

// ShowOptions configure the show command.
type ShowOptions struct {
	JSON bool
}

// ExportOptions hold parameters for exporting validated predictions.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}
