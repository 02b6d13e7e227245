package scripting

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// Runner implements Engine on top of the goja interpreter. It starts in a
// not-ready state and becomes usable once SetReady is called, which the
// application does after the initial index sync.
type Runner struct {
	src   DataSource
	ready chan struct{}
	once  sync.Once
}

// NewRunner creates a Runner over the given data source.
func NewRunner(src DataSource) *Runner {
	return &Runner{src: src, ready: make(chan struct{})}
}

// SetReady marks the engine usable. Safe to call more than once.
func (r *Runner) SetReady() {
	r.once.Do(func() { close(r.ready) })
}

// Ready reports whether SetReady has been called.
func (r *Runner) Ready() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the engine is usable or ctx ends.
func (r *Runner) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scripting: %w: %v", apperr.ErrNotReady, ctx.Err())
	}
}

// Evaluate runs source in a fresh interpreter. Each evaluation gets its own
// runtime, so scripts cannot leak state into one another. The script is
// interrupted as soon as ctx ends.
func (r *Runner) Evaluate(ctx context.Context, source, path string) (string, error) {
	current, err := r.src.Page(path)
	if err != nil {
		return "", fmt.Errorf("scripting: load page %s: %w", path, err)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if err := vm.Set("current", current); err != nil {
		return "", fmt.Errorf("scripting: bind current: %w", err)
	}
	if err := vm.Set("dg", &dataHandle{src: r.src}); err != nil {
		return "", fmt.Errorf("scripting: bind dg: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	v, err := vm.RunString(source)
	if err != nil {
		return "", fmt.Errorf("scripting: evaluate: %w", err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

// dataHandle is the dg binding scripts see. Method names surface in
// lower-camel form, so scripts call dg.page(...), dg.pages(...) and
// dg.field(...).
type dataHandle struct {
	src DataSource
}

// Page returns the indexed record for path, or null.
func (h *dataHandle) Page(path string) (*models.PageRecord, error) {
	return h.src.Page(path)
}

// Pages returns every indexed record under the given path prefix.
func (h *dataHandle) Pages(prefix string) ([]models.PageRecord, error) {
	return h.src.PagesUnder(prefix)
}

// Field returns the inline field value for a page, or an empty string when
// either the page or the field is absent.
func (h *dataHandle) Field(path, name string) (string, error) {
	rec, err := h.src.Page(path)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return rec.Fields[name], nil
}
