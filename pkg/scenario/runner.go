package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-rod/rod"

	"github.com/thesyncim/burger-e2e/pkg/scenario/internal"
)

// PageSource opens an isolated browser page for one scenario. release must
// dispose of the page and everything it stored.
type PageSource interface {
	NewPage(ctx context.Context) (page *rod.Page, release func() error, err error)
}

// Option configures a Runner.
type Option func(*Runner) error

// WithBaseURL sets the application origin scenarios navigate to.
func WithBaseURL(u string) Option {
	return func(r *Runner) error {
		if u == "" {
			return errors.New("base URL must not be empty")
		}
		r.baseURL = u
		return nil
	}
}

// WithViewport sets the window size of every scenario.
// Default: 1440x800
func WithViewport(v Viewport) Option {
	return func(r *Runner) error {
		if v.Width <= 0 || v.Height <= 0 {
			return fmt.Errorf("viewport %dx%d must be positive", v.Width, v.Height)
		}
		r.viewport = v
		return nil
	}
}

// WithTimeout sets the default assertion timeout.
// Default: 4 seconds
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) error {
		if d <= 0 {
			return errors.New("assertion timeout must be positive")
		}
		r.timeout = d
		return nil
	}
}

// WithWaitTimeout sets the default timeout of interception waits and page
// loads.
// Default: 5 seconds
func WithWaitTimeout(d time.Duration) Option {
	return func(r *Runner) error {
		if d <= 0 {
			return errors.New("wait timeout must be positive")
		}
		r.waitTimeout = d
		return nil
	}
}

// WithPollInterval sets how often failing assertions are retried.
// Default: 100 milliseconds
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		r.interval = d
		return nil
	}
}

// WithFixtures sets the source of fixture payloads for mocks.
func WithFixtures(f FixtureSource) Option {
	return func(r *Runner) error {
		r.fixtures = f
		return nil
	}
}

// WithFilter runs only the scenarios whose full name matches expr.
func WithFilter(expr string) Option {
	return func(r *Runner) error {
		if expr == "" {
			r.filter = nil
			return nil
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("scenario filter: %w", err)
		}
		r.filter = re
		return nil
	}
}

// WithLogger sets the logger for run progress.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		r.log = l
		return nil
	}
}

func withClock(c internal.Clock) Option {
	return func(r *Runner) error {
		r.clock = c
		return nil
	}
}

// preparer builds the session of a plan and returns its teardown.
type preparer func(ctx context.Context, plan Plan) (*Session, func(context.Context) error, error)

func withPreparer(p preparer) Option {
	return func(r *Runner) error {
		r.prepare = p
		return nil
	}
}

// Runner executes plans one at a time, each in its own browser context.
// A failing scenario never stops the ones after it.
type Runner struct {
	pages       PageSource
	fixtures    FixtureSource
	baseURL     string
	viewport    Viewport
	timeout     time.Duration
	waitTimeout time.Duration
	interval    time.Duration
	filter      *regexp.Regexp
	log         *slog.Logger
	clock       internal.Clock
	prepare     preparer
}

// NewRunner creates a Runner opening pages from pages.
func NewRunner(pages PageSource, opts ...Option) (*Runner, error) {
	r := &Runner{
		pages:       pages,
		viewport:    DefaultViewport,
		timeout:     4 * time.Second,
		waitTimeout: 5 * time.Second,
		interval:    100 * time.Millisecond,
		log:         slog.New(slog.DiscardHandler),
		clock:       internal.MonotonicClock{},
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if r.prepare == nil {
		if pages == nil {
			return nil, errors.New("page source is required")
		}
		r.prepare = r.openSession
	}
	return r, nil
}

// Run executes every plan of suite in order and reports the outcome.
func (r *Runner) Run(ctx context.Context, suite Suite) *Report {
	start := time.Now()
	report := &Report{Suite: suite.Name}
	for _, plan := range suite.Plans() {
		if r.filter != nil && !r.filter.MatchString(plan.Name) {
			continue
		}
		if ctx.Err() != nil {
			report.Results = append(report.Results, Result{Name: plan.Name, Skipped: true, Err: ctx.Err()})
			continue
		}
		report.Results = append(report.Results, r.RunPlan(ctx, plan))
	}
	report.Duration = time.Since(start)
	return report
}

// RunPlan executes a single plan: setup, body, teardown.
func (r *Runner) RunPlan(ctx context.Context, plan Plan) Result {
	start := time.Now()
	res := Result{Name: plan.Name}
	log := r.log.With("scenario", plan.Name)
	log.Info("scenario started")

	sess, teardown, err := r.prepare(ctx, plan)
	if err != nil {
		res.Err = fmt.Errorf("setup: %w", err)
	} else {
		res.Err = runBody(ctx, plan.Run, sess)
		if terr := teardown(context.WithoutCancel(ctx)); terr != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("teardown: %w", terr))
		}
		if sess != nil && sess.mocks != nil {
			res.Unmatched = sess.mocks.Unmatched()
		}
	}

	res.Passed = res.Err == nil
	res.Duration = time.Since(start)
	if res.Passed {
		log.Info("scenario passed", "duration", res.Duration)
	} else {
		log.Error("scenario failed", "duration", res.Duration, "error", res.Err)
	}
	return res
}

// runBody calls step, turning a panic into an error so Must-style helpers
// fail only the current scenario.
func runBody(ctx context.Context, step Step, sess *Session) (err error) {
	if step == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			err = &ScenarioPanic{Value: v}
		}
	}()
	return step(ctx, sess)
}

// openSession installs the plan's mocks on a fresh page, loads the entry
// point, waits for the initial fetches and seeds the plan's session state.
func (r *Runner) openSession(ctx context.Context, plan Plan) (*Session, func(context.Context) error, error) {
	mocks, err := NewMockSet(r.fixtures, plan.Mocks...)
	if err != nil {
		return nil, nil, err
	}

	page, release, err := r.pages.NewPage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open page: %w", err)
	}
	router, err := installMocks(page, mocks, r.log)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("install mocks: %w", err), release())
	}

	sess := r.newSession(page, mocks)
	closeAll := func() error {
		return errors.Join(router.Stop(), release())
	}

	if err := r.setUp(ctx, sess, plan); err != nil {
		return nil, nil, errors.Join(err, closeAll())
	}

	teardown := func(ctx context.Context) error {
		var errs []error
		if !plan.Session.Empty() {
			if err := sess.Clear(ctx); err != nil {
				errs = append(errs, err)
			} else if err := sess.StorageEmpty(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, closeAll())
		return errors.Join(errs...)
	}
	return sess, teardown, nil
}

func (r *Runner) setUp(ctx context.Context, sess *Session, plan Plan) error {
	if err := sess.SetViewport(r.viewport); err != nil {
		return err
	}
	if err := sess.Visit(ctx, plan.Entry); err != nil {
		return err
	}
	for _, alias := range plan.WaitFor {
		if _, err := sess.Wait(ctx, alias); err != nil {
			return err
		}
	}
	if plan.Session.Empty() {
		return nil
	}
	if err := sess.StorageEmpty(ctx); err != nil {
		return err
	}
	if err := sess.Seed(ctx, plan.Session); err != nil {
		return err
	}
	return sess.StorageHas(ctx, plan.Session)
}

func (r *Runner) newSession(page *rod.Page, mocks *MockSet) *Session {
	return &Session{
		page:    page,
		mocks:   mocks,
		baseURL: r.baseURL,
		timeout: r.timeout,
		wait:    r.waitTimeout,
		poll:    poller{clock: r.clock, interval: r.interval},
		log:     r.log,
	}
}
