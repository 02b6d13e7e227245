// Package scripting evaluates user-configured scripts against indexed
// journal data. Scripts run in an isolated interpreter per evaluation; a
// hung or runaway script is interrupted when its context ends and can
// never take the host down.
package scripting

import (
	"context"

	"github.com/starford/dagaz/internal/models"
)

// Engine is the evaluation surface the metric extractor depends on.
type Engine interface {
	// Ready reports whether scripts can be evaluated right now.
	Ready() bool
	// WaitReady blocks until the engine is usable or ctx ends.
	WaitReady(ctx context.Context) error
	// Evaluate runs source with two bindings in scope: dg, the data-access
	// handle over the field index, and current, the record for path (null
	// when the page is not indexed). The result is its display string; an
	// empty string means the script produced no value.
	Evaluate(ctx context.Context, source, path string) (string, error)
}

// DataSource is the slice of the field index that scripts may query.
type DataSource interface {
	// Page returns the record for path, or nil when the page is not indexed.
	Page(path string) (*models.PageRecord, error)
	// PagesUnder returns every indexed record whose path starts with prefix,
	// ordered by path.
	PagesUnder(prefix string) ([]models.PageRecord, error)
}
