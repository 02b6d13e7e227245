package panel

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/dagaz/internal/journal"
)

// defaultRebuildTimeout bounds one rebuild, including any script readiness
// wait and evaluation time.
const defaultRebuildTimeout = 30 * time.Second

type reconfigureReq struct {
	days *journal.Resolver
	opts Options
}

// Hub owns the panel lifecycle: invalidation events in, content snapshots
// out.
//
// Concurrency model: a single internal loop goroutine owns the engine, the
// subscriber set and the latest content. Public methods communicate with
// the loop through channels, so rebuilds are strictly sequential and no
// mutexes are required. An invalidation arriving during a rebuild does not
// cancel it; it queues the next one, and pending invalidations coalesce.
type Hub struct {
	engine  *Engine
	logger  *slog.Logger
	timeout time.Duration

	invalidateCh  chan struct{}
	subscribeCh   chan chan Content
	unsubscribeCh chan chan Content
	snapshotCh    chan chan Content
	reconfigureCh chan reconfigureReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewHub creates a hub and starts its loop with an immediate first rebuild.
func NewHub(engine *Engine, logger *slog.Logger) *Hub {
	h := &Hub{
		engine:        engine,
		logger:        logger,
		timeout:       defaultRebuildTimeout,
		invalidateCh:  make(chan struct{}, 1),
		subscribeCh:   make(chan chan Content),
		unsubscribeCh: make(chan chan Content),
		snapshotCh:    make(chan chan Content),
		reconfigureCh: make(chan reconfigureReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)

	subs := make(map[chan Content]struct{})
	var last Content

	rebuild := func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		content := h.engine.Rebuild(ctx)
		cancel()
		if content.Equal(last) {
			return
		}
		last = content
		for ch := range subs {
			deliver(ch, content)
		}
	}

	rebuild()

	// The rollover timer fires when the logical date changes, so "Today"
	// moves forward even without file events.
	rollover := time.NewTimer(time.Until(h.engine.NextRollover()))
	defer rollover.Stop()

	for {
		select {
		case <-h.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case <-h.invalidateCh:
			rebuild()

		case <-rollover.C:
			h.logger.Debug("panel: day rollover")
			rebuild()
			rollover.Reset(time.Until(h.engine.NextRollover()))

		case req := <-h.reconfigureCh:
			h.engine.Reconfigure(req.days, req.opts)
			rebuild()
			rollover.Reset(time.Until(h.engine.NextRollover()))

		case ch := <-h.subscribeCh:
			subs[ch] = struct{}{}
			deliver(ch, last)

		case ch := <-h.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case resp := <-h.snapshotCh:
			resp <- last
		}
	}
}

// deliver pushes content without ever blocking the loop. When the
// subscriber's buffer is full, the stale snapshot is replaced so that the
// subscriber always observes the newest one.
func deliver(ch chan Content, content Content) {
	select {
	case ch <- content:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- content:
	default:
	}
}

// Close stops the loop and closes all subscriber channels.
func (h *Hub) Close() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.stopCh)
	}
	<-h.stopped
}

// Invalidate schedules a rebuild. Invalidations arriving while one is
// already pending coalesce into a single rebuild.
func (h *Hub) Invalidate() {
	if h.closed.Load() {
		return
	}
	select {
	case h.invalidateCh <- struct{}{}:
	default:
	}
}

// Reconfigure swaps the day resolver and display options; the change
// applies between rebuilds, never during one. A nil resolver keeps the
// current one.
func (h *Hub) Reconfigure(days *journal.Resolver, opts Options) {
	if h.closed.Load() {
		return
	}
	select {
	case h.reconfigureCh <- reconfigureReq{days: days, opts: opts}:
	case <-h.stopped:
	}
}

// Subscribe adds a client and returns its channel. The current content is
// delivered immediately; afterwards only changed snapshots arrive.
func (h *Hub) Subscribe() chan Content {
	ch := make(chan Content, 1)
	if h.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case h.subscribeCh <- ch:
	case <-h.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(ch chan Content) {
	if h.closed.Load() {
		return
	}
	select {
	case h.unsubscribeCh <- ch:
	case <-h.stopped:
	}
}

// Snapshot returns the most recently assembled content.
func (h *Hub) Snapshot() Content {
	if h.closed.Load() {
		return Content{}
	}

	resp := make(chan Content, 1)
	select {
	case h.snapshotCh <- resp:
	case <-h.stopped:
		return Content{}
	}

	select {
	case content := <-resp:
		return content
	case <-h.stopped:
		return Content{}
	}
}
