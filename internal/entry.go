// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/extract"
	"github.com/starford/dagaz/internal/fieldindex"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/panel"
	"github.com/starford/dagaz/internal/render"
	"github.com/starford/dagaz/internal/scripting"
	"github.com/starford/dagaz/internal/vault"
	"github.com/starford/dagaz/pkg/config"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Logs go to stderr; stdout belongs to the rendered panel.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := vault.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	// Initialize SQLite page index.
	db, err := fieldindex.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Scripts read through the page index, so they are held back until the
	// first sync attempt completes.
	runner := scripting.NewRunner(db)

	if err := fieldindex.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	runner.SetReady()

	days := newDayResolver(cfg.Journal, logger)
	engine := panel.NewEngine(store, days, extract.New(runner), panelOptions(cfg.Panel), logger)
	hub := panel.NewHub(engine, logger)
	defer hub.Close()

	renderer := render.New(render.DefaultStyles())
	screen := render.NewScreen(os.Stdout)

	logger.Info("Panel starting...")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Vault watcher invalidates the panel on every index mutation.
	g.Go(func() error {
		return fieldindex.Watch(gCtx, db, store, cfg.Vault.Path, logger, func(_, _ string) {
			hub.Invalidate()
		})
	})

	// Presenter: redraw on every content snapshot.
	g.Go(func() error {
		sub := hub.Subscribe()
		defer hub.Unsubscribe(sub)
		for {
			select {
			case <-gCtx.Done():
				return nil
			case content, ok := <-sub:
				if !ok {
					return nil
				}
				frame, hint := renderer.Frame(content)
				screen.Show(frame)
				logger.Debug("panel: drawn",
					slog.Int("columns", len(content.Columns)),
					slog.Int("width", hint.Width),
					slog.Int("height", hint.Height))
			}
		}
	})

	// Config watcher: journal and panel settings apply live; vault and
	// index paths need a restart.
	if app.configPath != "" {
		g.Go(func() error {
			return config.Watch(gCtx, app.configPath, logger, func() {
				fresh := NewDefaultConfig()
				if err := config.Load(app.configPath, fresh); err != nil {
					logger.Warn("config reload failed, keeping previous settings",
						slog.String("error", err.Error()))
					return
				}
				hub.Reconfigure(newDayResolver(fresh.Journal, logger), panelOptions(fresh.Panel))
				logger.Info("configuration reloaded")
			})
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Panel stopped successfully")
	return nil
}

// newDayResolver builds the journal day resolver. A malformed day-end value
// falls back to the default boundary instead of aborting startup.
func newDayResolver(cfg JournalConfig, logger *slog.Logger) *journal.Resolver {
	dayEnd, err := journal.ParseDayEnd(cfg.DayEnd)
	if err != nil && cfg.Enabled {
		logger.Warn("invalid day_end, using default",
			slog.String("value", cfg.DayEnd),
			slog.String("default", dayEnd.String()))
	}
	return journal.NewResolver(journal.Settings{
		Enabled:        cfg.Enabled,
		FilenameFormat: cfg.FilenameFormat,
		Folder:         cfg.Folder,
		DayEnd:         dayEnd,
	})
}

// panelOptions converts the panel section into engine options.
func panelOptions(cfg PanelConfig) panel.Options {
	return panel.Options{
		Fields:         cfg.Fields,
		Periods:        cfg.Periods,
		DaysToShow:     cfg.DaysToShow,
		NoDataMessage:  cfg.NoDataMessage,
		ShowFieldNames: cfg.ShowFieldNames,
	}
}
