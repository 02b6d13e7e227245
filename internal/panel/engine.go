package panel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/extract"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/vault"
)

// Options carries the display configuration of one engine instance.
type Options struct {
	Fields         []models.FieldSpec
	Periods        []models.PeriodSpec
	DaysToShow     int
	NoDataMessage  string
	ShowFieldNames bool
}

// Engine assembles panel content from the vault. It holds no mutable state
// across rebuilds beyond its configuration, which the hub swaps only
// between rebuilds.
type Engine struct {
	store  vault.Provider
	days   *journal.Resolver
	ex     *extract.Extractor
	opts   Options
	logger *slog.Logger

	// Now returns the current instant; tests pin it to a fixed time.
	Now func() time.Time
}

// NewEngine creates an Engine over the given vault and day resolver.
func NewEngine(store vault.Provider, days *journal.Resolver, ex *extract.Extractor, opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		days:   days,
		ex:     ex,
		opts:   opts,
		logger: logger,
		Now:    time.Now,
	}
}

func (e *Engine) now() time.Time { return e.Now() }

// Reconfigure swaps the resolver and display options. It must not run
// concurrently with a rebuild; the hub serializes the two.
func (e *Engine) Reconfigure(days *journal.Resolver, opts Options) {
	if days != nil {
		e.days = days
	}
	e.opts = opts
}

// NextRollover returns the next instant at which the logical date changes.
func (e *Engine) NextRollover() time.Time {
	return e.days.NextBoundary(e.now())
}

// Rebuild assembles a fresh content snapshot. It never fails: any assembly
// error is logged and replaced by the fallback message.
func (e *Engine) Rebuild(ctx context.Context) Content {
	content, err := e.build(ctx)
	if err != nil {
		e.logger.Error("panel: rebuild failed", slog.String("error", err.Error()))
		return Fallback()
	}
	return content
}

func (e *Engine) build(ctx context.Context) (content Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panel: assemble panicked: %v", r)
		}
	}()

	if !e.days.Enabled() {
		return disabledContent(), nil
	}

	cols, err := e.assemble(ctx, newContentCache(e.store, e.logger), e.now())
	if err != nil {
		return Content{}, err
	}
	return Content{Columns: cols}, nil
}

// contentCache memoizes vault reads for the duration of one rebuild, so a
// day referenced by several periods is read at most once.
type contentCache struct {
	store  vault.Provider
	logger *slog.Logger
	files  map[string]*string // nil entry records a known-missing file
}

func newContentCache(store vault.Provider, logger *slog.Logger) *contentCache {
	return &contentCache{store: store, logger: logger, files: make(map[string]*string)}
}

// read returns the content of path and whether the file exists. Read
// failures are logged and treated as missing.
func (c *contentCache) read(path string) (string, bool) {
	if cached, ok := c.files[path]; ok {
		if cached == nil {
			return "", false
		}
		return *cached, true
	}

	ref, err := c.store.Resolve(path)
	if err != nil {
		c.logger.Warn("panel: resolve failed", slog.String("path", path), slog.String("error", err.Error()))
		c.files[path] = nil
		return "", false
	}
	if ref == nil {
		c.files[path] = nil
		return "", false
	}
	data, err := c.store.Read(ref.Path)
	if err != nil {
		c.logger.Warn("panel: read failed", slog.String("path", path), slog.String("error", err.Error()))
		c.files[path] = nil
		return "", false
	}
	s := string(data)
	c.files[path] = &s
	return s, true
}
