// Package session drives one photo through analysis and editing.
//
// A Controller moves Idle -> Loading -> Done or Error, and Reset returns it to
// Idle from any state. Only one analysis may be outstanding: Submit while
// Loading fails with ErrBusy and the running request is left alone. Reset
// cancels the running request and its result, if any, is discarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/records"
)

// State is the lifecycle position of a session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateLoading
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrBusy is returned when an analysis is already running.
	ErrBusy = errors.New("an analysis is already in progress")
	// ErrNotIdle is returned when a photo is submitted before resetting a finished session.
	ErrNotIdle = errors.New("reset the session before submitting another photo")
	// ErrNothingToRetry is returned by Retry outside the error state.
	ErrNothingToRetry = errors.New("no failed analysis to retry")
	// ErrNotEditable is returned when records are edited before analysis completes.
	ErrNotEditable = errors.New("routes can only be edited after a successful analysis")
)

// Analyzer produces detections for an image.
type Analyzer interface {
	Analyze(ctx context.Context, img model.Image, mode analysis.Mode) ([]model.RouteDetection, error)
	Provider(mode analysis.Mode) string
}

// Snapshot is a consistent view of a session for renderers.
type Snapshot struct {
	Err        error
	Provider   string
	Records    []model.RouteRecord
	State      State
	Generation uint64
	HasImage   bool
}

// ErrorMessage returns the user-facing failure text, if any.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Option configures a Controller.
type Option func(*Controller)

// WithMode selects remote, demo or automatic analysis.
func WithMode(mode analysis.Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithTimeout bounds each analysis request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithStore sets the record store backing the session.
func WithStore(store *records.Store) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// Controller owns the state of one analysis session. It is safe for
// concurrent use.
type Controller struct {
	analyzer   Analyzer
	store      *records.Store
	err        error
	image      *model.Image
	cancel     context.CancelFunc
	settled    chan struct{}
	provider   string
	listeners  []func(Snapshot)
	timeout    time.Duration
	generation uint64
	mode       analysis.Mode
	state      State
	mu         sync.Mutex
}

// New creates an idle Controller.
func New(analyzer Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer: analyzer,
		mode:     analysis.ModeAuto,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = records.New()
	}
	return c
}

// OnChange registers fn to be called after every state transition.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Submit validates img and starts analysing it in the background.
func (c *Controller) Submit(ctx context.Context, img model.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	switch c.state {
	case StateLoading:
		c.mu.Unlock()
		return ErrBusy
	case StateDone, StateError:
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.image = &img
	snap, launch := c.startLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	launch()
	return nil
}

// Retry re-runs analysis of the retained image after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateError || c.image == nil {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	snap, launch := c.startLocked(ctx)
	c.mu.Unlock()

	c.notify(snap)
	launch()
	return nil
}

// startLocked moves to Loading. The returned launch func starts the analysis
// goroutine and must be called after the Loading snapshot is published.
func (c *Controller) startLocked(parent context.Context) (Snapshot, func()) {
	c.generation++
	gen := c.generation
	img := *c.image

	ctx, cancel := context.WithCancel(parent)
	if c.timeout > 0 {
		ctx, cancel = withTimeout(ctx, cancel, c.timeout)
	}
	c.cancel = cancel
	c.settled = make(chan struct{})
	c.state = StateLoading
	c.err = nil
	c.provider = c.analyzer.Provider(c.mode)
	c.store.Clear()

	settled := c.settled

	slog.Debug("Analysis started", "generation", gen, "provider", c.provider, "bytes", len(img.Data))
	return c.snapshotLocked(), func() {
		go c.run(ctx, gen, img, settled)
	}
}

func withTimeout(ctx context.Context, cancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	timed, cancelTimed := context.WithTimeout(ctx, d)
	return timed, func() {
		cancelTimed()
		cancel()
	}
}

func (c *Controller) run(ctx context.Context, gen uint64, img model.Image, settled chan struct{}) {
	defer close(settled)

	detections, err := c.analyzer.Analyze(ctx, img, c.mode)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		slog.Debug("Discarding stale analysis result", "generation", gen)
		return
	}
	c.cancel()
	c.cancel = nil
	if err != nil {
		c.state = StateError
		c.err = err
		c.store.Clear()
		slog.Warn("Analysis failed", "provider", c.provider, "kind", analysis.KindOf(err), "error", err)
	} else {
		c.state = StateDone
		c.store.ReplaceAll(detections)
		slog.Info("Analysis complete", "provider", c.provider, "routes", len(detections))
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Wait blocks until the current analysis settles or ctx ends, and returns
// the resulting state.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
	return c.State(), nil
}

// Reset discards the image, records and error and returns to Idle. A running
// analysis is cancelled and its result ignored.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.state = StateIdle
	c.image = nil
	c.err = nil
	c.provider = ""
	c.store.Clear()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Patch edits one record. Only allowed once analysis has succeeded.
func (c *Controller) Patch(index int, p model.Patch) (model.RouteRecord, error) {
	c.mu.Lock()
	if c.state != StateDone {
		c.mu.Unlock()
		return model.RouteRecord{}, ErrNotEditable
	}
	rec, err := c.store.Patch(index, p)
	if err != nil {
		c.mu.Unlock()
		return model.RouteRecord{}, err
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return rec, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the retained failure while in the error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Image returns the submitted image, if one is retained.
func (c *Controller) Image() (model.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.image == nil {
		return model.Image{}, false
	}
	return *c.image, true
}

// Provider names the source of the current or last analysis.
func (c *Controller) Provider() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider
}

// Records returns a copy of the current records.
func (c *Controller) Records() []model.RouteRecord {
	return c.store.Records()
}

// Record returns the record at index.
func (c *Controller) Record(index int) (model.RouteRecord, bool) {
	return c.store.Record(index)
}

// Len reports how many records the session holds.
func (c *Controller) Len() int {
	return c.store.Len()
}

// ExportDocument snapshots the current records.
func (c *Controller) ExportDocument() model.ExportDocument {
	return c.store.ExportDocument()
}

// ClipboardText renders the current records for the clipboard.
func (c *Controller) ClipboardText() (string, error) {
	return c.store.ClipboardText()
}

// Snapshot returns a consistent view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		Err:        c.err,
		Provider:   c.provider,
		Records:    c.store.Records(),
		Generation: c.generation,
		HasImage:   c.image != nil,
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.mu.Lock()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
