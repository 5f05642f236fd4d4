package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pts-bot/mmi2grpc/internal/testharness/engine"
	"github.com/pts-bot/mmi2grpc/internal/testharness/loader"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
)

// fakeDispatcher answers OK unless an answer or error is set for the MMI.
type fakeDispatcher struct {
	mu       sync.Mutex
	started  []string
	requests []*mmi.Request
	answers  map[string]string
	errs     map[string]error
	startErr error
}

func newFake() *fakeDispatcher {
	return &fakeDispatcher{answers: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeDispatcher) TestStarted(_ context.Context, test string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, test)
	if f.startErr != nil {
		return "", f.startErr
	}
	return mmi.AnswerOK, nil
}

func (f *fakeDispatcher) Interact(_ context.Context, req *mmi.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.Name]; err != nil {
		return "", err
	}
	if a, ok := f.answers[req.Name]; ok {
		return a, nil
	}
	return mmi.AnswerOK, nil
}

func (f *fakeDispatcher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Name)
	}
	return out
}

func testConfig() *engine.EngineConfig {
	cfg := engine.DefaultConfig()
	cfg.DefaultSettle = 0
	cfg.PTSAddr = []byte{0x00, 0x1b, 0xdc, 0x07, 0x32, 0x8c}
	return cfg
}

func slcScript() *loader.Script {
	return &loader.Script{
		ID: "HFP/AG/SLC/BV-01-C",
		Steps: []loader.Step{
			{MMI: "TSC_delete_pairing_iut"},
			{MMI: "TSC_iut_enable_slc", Description: "initiate SLC"},
			{MMI: "TSC_iut_disable_slc"},
		},
	}
}

func TestRunPassesAllSteps(t *testing.T) {
	f := newFake()
	e := engine.NewWithConfig(f, testConfig())

	result := e.Run(context.Background(), slcScript())

	require.True(t, result.Passed, "error: %v", result.Error)
	assert.Equal(t, []string{"HFP/AG/SLC/BV-01-C"}, f.started)
	assert.Equal(t, []string{"TSC_delete_pairing_iut", "TSC_iut_enable_slc", "TSC_iut_disable_slc"}, f.names())
	require.Len(t, result.StepResults, 3)
	for i, sr := range result.StepResults {
		assert.Equal(t, i, sr.StepIndex)
		assert.Equal(t, mmi.AnswerOK, sr.Answer)
	}
}

func TestRunForwardsRequestFields(t *testing.T) {
	f := newFake()
	cfg := testConfig()
	e := engine.NewWithConfig(f, cfg)

	sc := slcScript()
	sc.Profile = "HFP"
	e.Run(context.Background(), sc)

	require.Len(t, f.requests, 3)
	req := f.requests[1]
	assert.Equal(t, "HFP", req.Profile)
	assert.Equal(t, sc.ID, req.Test)
	assert.Equal(t, "initiate SLC", req.Description)
	assert.Equal(t, cfg.PTSAddr, req.PTSAddr)
}

func TestRunStopsOnStepError(t *testing.T) {
	f := newFake()
	rpcErr := errors.New("connect failed")
	f.errs["TSC_iut_enable_slc"] = rpcErr
	e := engine.NewWithConfig(f, testConfig())

	result := e.Run(context.Background(), slcScript())

	assert.False(t, result.Passed)
	assert.ErrorIs(t, result.Error, rpcErr)
	assert.Len(t, result.StepResults, 2)
	assert.Equal(t, []string{"TSC_delete_pairing_iut", "TSC_iut_enable_slc"}, f.names())
}

func TestRunChecksExpectedAnswer(t *testing.T) {
	f := newFake()
	f.answers["TSC_iut_search"] = "NOK"
	e := engine.NewWithConfig(f, testConfig())

	sc := &loader.Script{ID: "HFP/AG/SLC/BV-02-C", Steps: []loader.Step{{MMI: "TSC_iut_search"}}}
	result := e.Run(context.Background(), sc)
	assert.False(t, result.Passed)
	assert.ErrorIs(t, result.Error, engine.ErrUnexpectedAnswer)

	sc.Steps[0].Expect = "NOK"
	result = e.Run(context.Background(), sc)
	assert.True(t, result.Passed, "error: %v", result.Error)
}

func TestRunExpectError(t *testing.T) {
	f := newFake()
	f.errs["TSC_bogus"] = mmi.ErrUnknownMMI
	e := engine.NewWithConfig(f, testConfig())

	sc := &loader.Script{ID: "HFP/AG/X", Steps: []loader.Step{{MMI: "TSC_bogus", ExpectError: true}}}
	result := e.Run(context.Background(), sc)
	assert.True(t, result.Passed, "error: %v", result.Error)

	sc.Steps[0].MMI = "TSC_iut_search"
	result = e.Run(context.Background(), sc)
	assert.False(t, result.Passed)
	assert.ErrorIs(t, result.Error, engine.ErrExpectedFailure)
}

func TestRunTestStartedFailure(t *testing.T) {
	f := newFake()
	f.startErr = mmi.ErrUnknownProfile
	e := engine.NewWithConfig(f, testConfig())

	result := e.Run(context.Background(), slcScript())

	assert.False(t, result.Passed)
	assert.ErrorIs(t, result.Error, mmi.ErrUnknownProfile)
	assert.Empty(t, f.names())
}

func TestRunSkip(t *testing.T) {
	f := newFake()
	e := engine.NewWithConfig(f, testConfig())

	sc := slcScript()
	sc.Skip = true
	result := e.Run(context.Background(), sc)

	assert.True(t, result.Skipped)
	assert.Equal(t, "skipped by script", result.SkipReason)
	assert.Empty(t, f.started)
}

func TestRunSkipsOnPICS(t *testing.T) {
	f := newFake()
	cfg := testConfig()
	cfg.PICS = &loader.PICSFile{Items: map[string]interface{}{"TSPC_HFP_1_1": false}}
	e := engine.NewWithConfig(f, cfg)

	sc := slcScript()
	sc.PICSRequirements = []string{"TSPC_HFP_1_1"}
	result := e.Run(context.Background(), sc)

	assert.True(t, result.Skipped)
	assert.Equal(t, "PICS requirements not met", result.SkipReason)
}

func TestRunHonoursDelayAndSettle(t *testing.T) {
	f := newFake()
	e := engine.NewWithConfig(f, testConfig())

	sc := &loader.Script{
		ID:     "HFP/AG/SLC/BV-04-C",
		Settle: "80ms",
		Steps:  []loader.Step{{MMI: "TSC_iut_search", Delay: "50ms"}},
	}
	result := e.Run(context.Background(), sc)

	require.True(t, result.Passed, "error: %v", result.Error)
	assert.GreaterOrEqual(t, result.Duration, 130*time.Millisecond)
	assert.Less(t, result.StepResults[0].Duration, 50*time.Millisecond)
}

func TestRunTimeoutDuringSettle(t *testing.T) {
	f := newFake()
	e := engine.NewWithConfig(f, testConfig())

	sc := &loader.Script{
		ID:      "HFP/AG/SLC/BV-04-C",
		Settle:  "5s",
		Timeout: "50ms",
		Steps:   []loader.Step{{MMI: "TSC_iut_search"}},
	}
	result := e.Run(context.Background(), sc)

	assert.False(t, result.Passed)
	assert.ErrorIs(t, result.Error, context.DeadlineExceeded)
}

func TestRunSuite(t *testing.T) {
	f := newFake()
	f.errs["TSC_iut_connect"] = errors.New("boom")
	cfg := testConfig()
	var completed []string
	cfg.OnTestComplete = func(r *engine.TestResult) { completed = append(completed, r.Script.ID) }
	e := engine.NewWithConfig(f, cfg)

	scripts := []*loader.Script{
		{ID: "A", Steps: []loader.Step{{MMI: "TSC_iut_search"}}},
		{ID: "B", Steps: []loader.Step{{MMI: "TSC_iut_connect"}}},
		{ID: "C", Skip: true, Steps: []loader.Step{{MMI: "TSC_iut_search"}}},
		{ID: "D", Steps: []loader.Step{{MMI: "TSC_iut_search"}}},
	}
	result := e.RunSuite(context.Background(), scripts)

	assert.Equal(t, 2, result.PassCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Equal(t, 1, result.SkipCount)
	assert.Equal(t, []string{"A", "B", "C", "D"}, completed)
}

func TestRunSuiteStopOnFirstFailure(t *testing.T) {
	f := newFake()
	f.errs["TSC_iut_connect"] = errors.New("boom")
	cfg := testConfig()
	cfg.StopOnFirstFailure = true
	e := engine.NewWithConfig(f, cfg)

	scripts := []*loader.Script{
		{ID: "A", Steps: []loader.Step{{MMI: "TSC_iut_connect"}}},
		{ID: "B", Steps: []loader.Step{{MMI: "TSC_iut_search"}}},
	}
	result := e.RunSuite(context.Background(), scripts)

	assert.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.FailCount)
}

func TestRunSuiteCancelled(t *testing.T) {
	f := newFake()
	e := engine.NewWithConfig(f, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := e.RunSuite(ctx, []*loader.Script{slcScript()})

	assert.Empty(t, result.Results)
}
