// Package session coordinates one analysis attempt at a time: it reads the
// screenshot selection, moves the view to the results page, issues the
// service call and records the outcome.
//
// A run is split in two halves so that a UI event loop can own all state.
// Begin validates the selection, enters Submitting and navigates, all
// synchronously. The returned Attempt performs the network call and may be
// executed on any goroutine; it never touches controller state. Resolve
// applies the attempt's Outcome back on the owning goroutine.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/upload"
)

// Phase is where the session is in its lifecycle
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Route names a view of the client
type Route string

const (
	RouteLanding Route = "/"
	RouteLab     Route = "/lab"
	RouteResults Route = "/lab/results"
)

// Navigator moves the UI to another view
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(route Route) { f(route) }

// Analyzer submits screenshots to the service
type Analyzer interface {
	Analyze(ctx context.Context, req *qupid.AnalyzeRequest) (*qupid.ServerResult, error)
}

// Observer is told about every attempt. Calls happen on the goroutine
// that owns the controller, after its lock is released.
type Observer interface {
	AttemptBegun(a *Attempt)
	AttemptResolved(out Outcome, stale, applied bool)
}

// Options tune controller behavior
type Options struct {
	// DiscardStale drops outcomes of attempts superseded by a newer Begin.
	// When false the last outcome to resolve wins, even an older one.
	DiscardStale bool
	Logger       *logger.Logger
	Observer     Observer
}

// Controller is the single analysis session. Begin and Resolve belong to the
// goroutine that owns the UI; the accessors may be read from anywhere.
type Controller struct {
	mu       sync.RWMutex
	store    *upload.Store
	analyzer Analyzer
	nav      Navigator
	opts     Options
	log      *logger.Logger

	phase  Phase
	err    error
	result *qupid.ServerResult
	seq    uint64
}

// New creates an idle controller. nav may be nil when there is no UI.
func New(store *upload.Store, analyzer Analyzer, nav Navigator, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		store:    store,
		analyzer: analyzer,
		nav:      nav,
		opts:     opts,
		log:      log.WithComponent("session"),
		phase:    Idle,
	}
}

// SetNavigator replaces the navigator, used when the UI is built after the controller
func (c *Controller) SetNavigator(nav Navigator) {
	c.mu.Lock()
	c.nav = nav
	c.mu.Unlock()
}

func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Result is the latest successful result. It survives later failures and
// new submissions until another success replaces it.
func (c *Controller) Result() *qupid.ServerResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// Err is the error of the latest run, or nil
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Message is the user-facing text of Err, or ""
func (c *Controller) Message() string {
	return qupid.Message(c.Err())
}

// Seq is the number of attempts begun so far
func (c *Controller) Seq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// Begin starts a run. With an empty selection it records NoFilesSelected,
// returns to Idle and returns that error without navigating. Otherwise it
// clears the previous error, enters Submitting, navigates to the results
// view and returns the attempt to execute.
func (c *Controller) Begin() (*Attempt, error) {
	c.mu.Lock()
	c.err = nil

	files := c.store.Files()
	if len(files) == 0 {
		err := qupid.NewNoFilesError()
		c.err = err
		c.phase = Idle
		c.mu.Unlock()
		c.log.Debug("run requested with no screenshots selected")
		return nil, err
	}

	c.seq++
	attempt := &Attempt{
		Seq:       c.seq,
		RequestID: uuid.New().String(),
		Files:     files,
		StartedAt: time.Now(),
		analyzer:  c.analyzer,
	}
	c.phase = Submitting
	nav := c.nav
	c.mu.Unlock()

	c.log.InfoWithFields("session submitting", []logger.Field{
		logger.F("seq", attempt.Seq),
		logger.RequestID(attempt.RequestID),
		logger.Count(len(files)),
	})

	if c.opts.Observer != nil {
		c.opts.Observer.AttemptBegun(attempt)
	}
	if nav != nil {
		nav.Navigate(RouteResults)
	}
	return attempt, nil
}

// Resolve applies an attempt's outcome and reports whether it was applied.
// An outcome from a superseded attempt is applied unless DiscardStale is set.
func (c *Controller) Resolve(out Outcome) bool {
	c.mu.Lock()
	stale := out.Seq != c.seq
	applied := c.apply(out)
	c.mu.Unlock()

	if c.opts.Observer != nil {
		c.opts.Observer.AttemptResolved(out, stale, applied)
	}
	return applied
}

func (c *Controller) apply(out Outcome) bool {
	fields := []logger.Field{
		logger.F("seq", out.Seq),
		logger.RequestID(out.RequestID),
		logger.Duration(out.Elapsed),
	}

	if out.Seq != c.seq {
		if c.opts.DiscardStale {
			c.log.InfoWithFields("discarding outcome of superseded attempt", append(fields, logger.F("current", c.seq)))
			return false
		}
		c.log.WarnWithFields("outcome of superseded attempt overwrites session", append(fields, logger.F("current", c.seq)))
	}

	if out.Err != nil {
		c.err = toSessionError(out.Err)
		c.phase = Failed
		c.log.InfoWithFields("session failed", append(fields, logger.Error(out.Err)))
		return true
	}

	c.result = out.Result
	c.err = nil
	c.phase = Succeeded
	c.log.InfoWithFields("session succeeded", fields)
	return true
}

// Run performs a whole attempt synchronously and returns its error, if any.
// The returned error is also available from Err.
func (c *Controller) Run(ctx context.Context) error {
	attempt, err := c.Begin()
	if err != nil {
		return err
	}
	c.Resolve(attempt.Execute(ctx))
	return c.Err()
}

// toSessionError makes sure every failure carries a user-facing message
func toSessionError(err error) error {
	var qe *qupid.Error
	if errors.As(err, &qe) {
		return err
	}
	return qupid.NewTransportError("", err)
}
