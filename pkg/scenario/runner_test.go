package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePreparer records the plans it prepares and hands out page-less
// sessions backed by real mock sets.
type fakePreparer struct {
	events      []string
	setupErr    map[string]error
	teardownErr map[string]error
}

func (f *fakePreparer) prepare(_ context.Context, plan Plan) (*Session, func(context.Context) error, error) {
	f.events = append(f.events, "setup "+plan.Name)
	if err := f.setupErr[plan.Name]; err != nil {
		return nil, nil, err
	}
	mocks, err := NewMockSet(testFixtures, plan.Mocks...)
	if err != nil {
		return nil, nil, err
	}
	sess := &Session{mocks: mocks}
	return sess, func(context.Context) error {
		f.events = append(f.events, "teardown "+plan.Name)
		return f.teardownErr[plan.Name]
	}, nil
}

func newTestRunner(t *testing.T, f *fakePreparer, opts ...Option) *Runner {
	t.Helper()
	opts = append([]Option{WithBaseURL(origin), withPreparer(f.prepare)}, opts...)
	r, err := NewRunner(nil, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r, err := NewRunner(nil, WithBaseURL(origin), withPreparer((&fakePreparer{}).prepare))
	require.NoError(t, err)
	assert.Equal(t, DefaultViewport, r.viewport)
	assert.Equal(t, 4*time.Second, r.timeout)
	assert.Equal(t, 5*time.Second, r.waitTimeout)
	assert.Equal(t, 100*time.Millisecond, r.interval)
}

func TestNewRunnerRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"no base url", nil},
		{"empty base url", []Option{WithBaseURL("")}},
		{"no page source", []Option{WithBaseURL(origin)}},
		{"viewport", []Option{WithBaseURL(origin), WithViewport(Viewport{Width: 0, Height: 800})}},
		{"timeout", []Option{WithBaseURL(origin), WithTimeout(0)}},
		{"wait timeout", []Option{WithBaseURL(origin), WithWaitTimeout(-time.Second)}},
		{"poll interval", []Option{WithBaseURL(origin), WithPollInterval(0)}},
		{"filter", []Option{WithBaseURL(origin), WithFilter("(")}},
		{"logger", []Option{WithBaseURL(origin), WithLogger(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestRunSequentialAndIsolated(t *testing.T) {
	f := &fakePreparer{}
	r := newTestRunner(t, f)

	var ran []string
	step := func(name string, err error) Step {
		return func(context.Context, *Session) error {
			ran = append(ran, name)
			return err
		}
	}
	suite := Suite{
		Name:  "burger",
		Mocks: testMocks(),
		Scenarios: []Scenario{
			{Name: "a", Run: step("a", nil)},
			{Name: "b", Run: step("b", &AssertionError{Step: "cart contains", Expected: `"Bun"`, Actual: `""`})},
			{Name: "c", Run: step("c", nil)},
		},
	}

	report := r.Run(context.Background(), suite)

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, []string{
		"setup a", "teardown a",
		"setup b", "teardown b",
		"setup c", "teardown c",
	}, f.events)

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Passed)
	assert.False(t, report.Results[1].Passed)
	assert.True(t, report.Results[2].Passed)

	var ae *AssertionError
	assert.True(t, errors.As(report.Results[1].Err, &ae))

	passed, failed, skipped := report.Counts()
	assert.Equal(t, []int{2, 1, 0}, []int{passed, failed, skipped})
	assert.False(t, report.Passed())
}

func TestRunRecoversPanics(t *testing.T) {
	r := newTestRunner(t, &fakePreparer{})
	suite := Suite{
		Mocks: testMocks(),
		Scenarios: []Scenario{
			{Name: "boom", Run: func(context.Context, *Session) error { panic("index out of range") }},
			{Name: "after", Run: noop},
		},
	}

	report := r.Run(context.Background(), suite)
	require.Len(t, report.Results, 2)

	var p *ScenarioPanic
	require.True(t, errors.As(report.Results[0].Err, &p))
	assert.Equal(t, "index out of range", p.Value)
	assert.True(t, report.Results[1].Passed)
}

func TestRunFilter(t *testing.T) {
	f := &fakePreparer{}
	r := newTestRunner(t, f, WithFilter("^Order Processing/"))
	suite := Suite{
		Mocks:     testMocks(),
		Scenarios: []Scenario{{Name: "modal", Run: noop}},
		Groups: []Group{{
			Name:      "Order Processing",
			Scenarios: []Scenario{{Name: "should create and confirm order", Run: noop}},
		}},
	}

	report := r.Run(context.Background(), suite)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "Order Processing/should create and confirm order", report.Results[0].Name)
}

func TestRunSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newTestRunner(t, &fakePreparer{})
	suite := Suite{
		Mocks: testMocks(),
		Scenarios: []Scenario{
			{Name: "first", Run: func(context.Context, *Session) error {
				cancel()
				return nil
			}},
			{Name: "second", Run: noop},
		},
	}

	report := r.Run(ctx, suite)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Passed)
	assert.True(t, report.Results[1].Skipped)
	assert.False(t, report.Passed())
}

func TestRunPlanSetupAndTeardownErrors(t *testing.T) {
	f := &fakePreparer{
		setupErr:    map[string]error{"setup fails": errors.New("open page: browser is closed")},
		teardownErr: map[string]error{"teardown fails": errors.New("session storage not empty")},
	}
	r := newTestRunner(t, f)

	res := r.RunPlan(context.Background(), Plan{Name: "setup fails", Run: noop})
	assert.False(t, res.Passed)
	assert.ErrorContains(t, res.Err, "setup: open page")

	bodyErr := errors.New("body failed")
	res = r.RunPlan(context.Background(), Plan{
		Name: "teardown fails",
		Run:  func(context.Context, *Session) error { return bodyErr },
	})
	assert.False(t, res.Passed)
	assert.ErrorIs(t, res.Err, bodyErr)
	assert.ErrorContains(t, res.Err, "teardown: session storage not empty")
}

func TestRunPlanTeardownSurvivesCancel(t *testing.T) {
	var teardownCtxErr error
	prepare := func(context.Context, Plan) (*Session, func(context.Context) error, error) {
		return &Session{}, func(ctx context.Context) error {
			teardownCtxErr = ctx.Err()
			return nil
		}, nil
	}
	r, err := NewRunner(nil, WithBaseURL(origin), withPreparer(prepare))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	res := r.RunPlan(ctx, Plan{Name: "x", Run: func(context.Context, *Session) error {
		cancel()
		return nil
	}})
	assert.True(t, res.Passed)
	assert.NoError(t, teardownCtxErr)
}

func TestRunPlanCollectsUnmatched(t *testing.T) {
	r := newTestRunner(t, &fakePreparer{})
	res := r.RunPlan(context.Background(), Plan{
		Name:  "stray",
		Mocks: testMocks(),
		Run: func(_ context.Context, s *Session) error {
			_, _, err := s.Mocks().Serve(Request{Method: "GET", URL: origin + "/api/auth/user"})
			return err
		},
	})
	assert.True(t, res.Passed)
	assert.Equal(t, []string{"GET " + origin + "/api/auth/user"}, res.Unmatched)
}

func TestSessionWithoutPage(t *testing.T) {
	var s *Session
	assert.ErrorIs(t, s.Visit(context.Background(), "/"), ErrNoPage)

	s = &Session{}
	assert.ErrorIs(t, s.Click(context.Background(), CSS("button")), ErrNoPage)
	assert.ErrorIs(t, s.Contains(context.Background(), CSS("body"), "x"), ErrNoPage)
	assert.ErrorIs(t, s.StorageEmpty(context.Background()), ErrNoPage)
	assert.True(t, strings.HasPrefix(ErrNoPage.Error(), "scenario:"))
}
