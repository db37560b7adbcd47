package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bidfeed/bidfeed-client/internal/feed"
	"github.com/bidfeed/bidfeed-client/internal/models"
)

// SnapshotStore persists the last bulk auction list so the view can be
// warm-started after a restart.
type SnapshotStore interface {
	Replace(ctx context.Context, records []models.AuctionRecord) error
}

// SubmissionObserver receives the server-side resolution of an
// in-flight submission. Confirmed and Rejected fire as soon as the
// matching notification arrives; Reset fires when the success notice
// is dismissed.
type SubmissionObserver interface {
	Confirmed()
	Rejected(message string)
	Reset()
}

// Options configures an Engine
type Options struct {
	Log             zerolog.Logger
	ItemsPerPage    int
	NoticeDismiss   time.Duration
	RefreshInterval time.Duration
	Snapshots       SnapshotStore          // optional
	Navigate        func(route string)     // optional post-confirmation hint
	Now             func() time.Time       // test clock override
	Initial         []models.AuctionRecord // warm-start records
}

// Engine keeps the local auction list consistent with the push feed.
// All mutable state is owned by the Run goroutine; every mutation and
// every read runs to completion on that goroutine before the next one
// starts, so callers never observe partial state.
type Engine struct {
	log          zerolog.Logger
	perPage      int
	dismissAfter time.Duration
	refresh      time.Duration
	now          func() time.Time
	navigate     func(string)
	snapshots    SnapshotStore
	observer     SubmissionObserver

	commands chan func()
	stopped  chan struct{} // closed when Run returns

	// owned by the Run goroutine
	records       map[string]models.AuctionRecord
	order         []string
	criterion     SortCriterion
	direction     SortDirection
	page          int
	notice        *TransientNotice
	noticeSeq     int
	noticeDismiss func()
	closure       *models.AuctionRecord
}

// New creates an Engine. Call Run before using any other method.
func New(opts Options) *Engine {
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = 5
	}
	if opts.NoticeDismiss <= 0 {
		opts.NoticeDismiss = 2 * time.Second
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		log:          opts.Log,
		perPage:      opts.ItemsPerPage,
		dismissAfter: opts.NoticeDismiss,
		refresh:      opts.RefreshInterval,
		now:          opts.Now,
		navigate:     opts.Navigate,
		snapshots:    opts.Snapshots,
		commands:     make(chan func(), 64),
		stopped:      make(chan struct{}),
		records:      make(map[string]models.AuctionRecord),
		criterion:    SortNone,
		page:         1,
	}
	for _, r := range opts.Initial {
		e.records[r.ID] = r
		e.order = append(e.order, r.ID)
	}
	return e
}

// Observe registers the submission pipeline for confirmation and
// rejection callbacks.
func (e *Engine) Observe(obs SubmissionObserver) {
	e.observer = obs
}

// Run consumes the event stream until ctx is cancelled. Notifications
// are processed strictly in arrival order, interleaved with commands
// from the public API and the periodic active-set re-evaluation tick.
func (e *Engine) Run(ctx context.Context, events <-chan feed.Event) {
	ticker := time.NewTicker(e.refresh)
	defer ticker.Stop()
	defer close(e.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				e.log.Warn().Msg("feed event stream closed")
				continue
			}
			e.ingest(ev)
		case fn := <-e.commands:
			fn()
		case <-ticker.C:
			e.refreshView()
		}
	}
}

// submit schedules fn on the loop without waiting for it
func (e *Engine) submit(fn func()) {
	select {
	case e.commands <- fn:
	default:
		// loop stopped or saturated; timers arriving after shutdown
		// land here and are safe to drop
	}
}

// do runs fn on the loop and waits for it. Once the loop has stopped,
// do returns without running fn so callers fail fast instead of
// blocking through shutdown.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	select {
	case e.commands <- func() {
		fn()
		close(done)
	}:
	case <-e.stopped:
		return
	}
	select {
	case <-done:
	case <-e.stopped:
	}
}

// View returns the current windowed projection of the active set
func (e *Engine) View() View {
	var v View
	e.do(func() { v = e.deriveView() })
	return v
}

// SetSort activates one sort criterion, implicitly deactivating the
// other. An unset direction reverts to the insertion-stable order.
func (e *Engine) SetSort(criterion SortCriterion, direction SortDirection) {
	e.do(func() {
		if direction == SortUnset || criterion == SortNone {
			e.criterion = SortNone
			e.direction = SortUnset
			return
		}
		e.criterion = criterion
		e.direction = direction
	})
}

// NextPage advances the window; a no-op on the last page
func (e *Engine) NextPage() {
	e.do(func() {
		v := e.deriveView()
		if v.Page < v.TotalPages {
			e.page = v.Page + 1
		}
	})
}

// PrevPage moves the window back; a no-op on the first page
func (e *Engine) PrevPage() {
	e.do(func() {
		v := e.deriveView()
		if v.Page > 1 {
			e.page = v.Page - 1
		}
	})
}

// SetPage jumps to a page; out-of-range values clamp on the next read
func (e *Engine) SetPage(page int) {
	e.do(func() {
		if page < 1 {
			page = 1
		}
		e.page = page
	})
}

// Notice returns the visible transient notice, if any
func (e *Engine) Notice() (TransientNotice, bool) {
	var (
		n  TransientNotice
		ok bool
	)
	e.do(func() {
		if e.notice != nil {
			n, ok = *e.notice, true
		}
	})
	return n, ok
}

// DismissNotice clears the notice slot without firing its dismiss hook
func (e *Engine) DismissNotice() {
	e.do(e.clearNotice)
}

// ShowNotice raises a user-facing message, replacing any pending one
// and resetting the dismiss deadline.
func (e *Engine) ShowNotice(text string, kind NoticeKind) {
	e.do(func() { e.showNotice(text, kind, nil) })
}

// Closure returns the pending closure presentation, if any
func (e *Engine) Closure() (models.AuctionRecord, bool) {
	var (
		rec models.AuctionRecord
		ok  bool
	)
	e.do(func() {
		if e.closure != nil {
			rec, ok = *e.closure, true
		}
	})
	return rec, ok
}

// DismissClosure acknowledges the closure presentation. The canonical
// record set is untouched.
func (e *Engine) DismissClosure() {
	e.do(func() { e.closure = nil })
}

// Records returns a snapshot of the canonical record set in insertion
// order.
func (e *Engine) Records() []models.AuctionRecord {
	var out []models.AuctionRecord
	e.do(func() { out = e.orderedRecords() })
	return out
}

func (e *Engine) orderedRecords() []models.AuctionRecord {
	out := make([]models.AuctionRecord, 0, len(e.order))
	for _, id := range e.order {
		if rec, ok := e.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// deriveView recomputes the projection and writes the clamped page
// index back, so a shrinking active set cannot strand the window.
func (e *Engine) deriveView() View {
	v := DeriveView(e.orderedRecords(), e.criterion, e.direction, e.page, e.perPage, e.now())
	e.page = v.Page
	return v
}

// refreshView is the periodic re-evaluation trigger: auctions cross
// their end time without any notification arriving, so the projection
// must be recomputed on a cadence independent of events.
func (e *Engine) refreshView() {
	e.deriveView()
}
