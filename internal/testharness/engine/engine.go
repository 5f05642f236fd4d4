package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pts-bot/mmi2grpc/internal/testharness/loader"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
)

// ErrUnexpectedAnswer is returned when the answer differs from the step's
// expectation.
var ErrUnexpectedAnswer = errors.New("unexpected answer")

// ErrExpectedFailure is returned when a step marked expect_error succeeds.
var ErrExpectedFailure = errors.New("step succeeded but an error was expected")

// Engine plays scripts against a dispatcher, one step at a time.
type Engine struct {
	config     *EngineConfig
	dispatcher Dispatcher
	logger     *slog.Logger
}

// New creates an engine with the default configuration.
func New(d Dispatcher) *Engine {
	return NewWithConfig(d, DefaultConfig())
}

// NewWithConfig creates an engine with the given configuration.
func NewWithConfig(d Dispatcher, config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:     config,
		dispatcher: d,
		logger:     slog.Default(),
	}
}

// SetLogger replaces the operational logger.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Run executes a single script: TestStarted, every step, then the settle
// time so deferred actions started by the last steps can land.
func (e *Engine) Run(ctx context.Context, sc *loader.Script) *TestResult {
	result := &TestResult{
		Script:    sc,
		StartTime: time.Now(),
	}
	finish := func() *TestResult {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	if sc.Skip {
		result.Skipped = true
		result.SkipReason = sc.SkipReason
		if result.SkipReason == "" {
			result.SkipReason = "skipped by script"
		}
		return finish()
	}

	if e.config.PICS != nil && !loader.CheckPICSRequirements(e.config.PICS, sc.PICSRequirements) {
		result.Skipped = true
		result.SkipReason = "PICS requirements not met"
		return finish()
	}

	timeout, _ := loader.ParseDuration(sc.Timeout, e.config.DefaultTimeout)
	settle, _ := loader.ParseDuration(sc.Settle, e.config.DefaultSettle)

	testCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info("test started", "test", sc.ID, "steps", len(sc.Steps))

	if _, err := e.dispatcher.TestStarted(testCtx, sc.ID, e.config.PTSAddr); err != nil {
		result.Error = fmt.Errorf("test started: %w", err)
		return finish()
	}

	for i := range sc.Steps {
		sr := e.executeStep(testCtx, sc, i)
		result.StepResults = append(result.StepResults, sr)
		if !sr.Passed {
			result.Error = fmt.Errorf("step %d (%s): %w", i+1, sr.Step.MMI, sr.Error)
			break
		}
	}

	if result.Error == nil && settle > 0 {
		select {
		case <-time.After(settle):
		case <-testCtx.Done():
			result.Error = fmt.Errorf("settle: %w", testCtx.Err())
		}
	}

	result.Passed = result.Error == nil
	e.logger.Info("test finished", "test", sc.ID, "passed", result.Passed)
	return finish()
}

// executeStep sends one MMI and checks the answer.
func (e *Engine) executeStep(ctx context.Context, sc *loader.Script, index int) *StepResult {
	step := &sc.Steps[index]
	result := &StepResult{Step: step, StepIndex: index}

	if delay, _ := loader.ParseDuration(step.Delay, 0); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			result.Error = ctx.Err()
			return result
		}
	}

	timeout, _ := loader.ParseDuration(step.Timeout, e.config.StepTimeout)
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := &mmi.Request{
		Profile:     sc.Profile,
		Test:        sc.ID,
		Name:        step.MMI,
		Description: step.Description,
		PTSAddr:     e.config.PTSAddr,
	}

	start := time.Now()
	answer, err := e.dispatcher.Interact(stepCtx, req)
	result.Duration = time.Since(start)
	result.Answer = answer

	switch {
	case step.ExpectError && err != nil:
		result.Passed = true
	case step.ExpectError:
		result.Error = ErrExpectedFailure
	case err != nil:
		result.Error = err
	case answer != expectedAnswer(step):
		result.Error = fmt.Errorf("%w: expected %q, got %q", ErrUnexpectedAnswer, expectedAnswer(step), answer)
	default:
		result.Passed = true
	}
	return result
}

func expectedAnswer(step *loader.Step) string {
	if step.Expect == "" {
		return mmi.AnswerOK
	}
	return step.Expect
}

// RunSuite executes scripts in order.
func (e *Engine) RunSuite(ctx context.Context, scripts []*loader.Script) *SuiteResult {
	result := &SuiteResult{
		SuiteName: "MMI Scripts",
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	for _, sc := range scripts {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		testResult := e.Run(ctx, sc)
		result.Results = append(result.Results, testResult)

		switch {
		case testResult.Skipped:
			result.SkipCount++
		case testResult.Passed:
			result.PassCount++
		default:
			result.FailCount++
		}

		if e.config.OnTestComplete != nil {
			e.config.OnTestComplete(testResult)
		}

		if !testResult.Passed && !testResult.Skipped && e.config.StopOnFirstFailure {
			break
		}
	}

	return result
}
