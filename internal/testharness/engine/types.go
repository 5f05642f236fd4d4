// Package engine replays MMI scripts against a dispatcher.
package engine

import (
	"context"
	"time"

	"github.com/pts-bot/mmi2grpc/internal/testharness/loader"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
)

// Dispatcher is the MMI endpoint a script is played against.
// *mmi.Dispatcher satisfies it.
type Dispatcher interface {
	TestStarted(ctx context.Context, test string, ptsAddr []byte) (string, error)
	Interact(ctx context.Context, req *mmi.Request) (string, error)
}

// TestResult represents the outcome of a single script.
type TestResult struct {
	// Script is the script that was executed.
	Script *loader.Script

	// Passed indicates if all steps passed.
	Passed bool

	// Error is the error that caused failure, if any.
	Error error

	// StepResults contains results for each step.
	StepResults []*StepResult

	// Duration is how long the test took, settle time included.
	Duration time.Duration

	// StartTime when the test started.
	StartTime time.Time

	// EndTime when the test finished.
	EndTime time.Time

	// Skipped indicates if the test was skipped (e.g., PICS mismatch).
	Skipped bool

	// SkipReason explains why the test was skipped.
	SkipReason string
}

// StepResult represents the outcome of a single MMI.
type StepResult struct {
	// Step is the step that was executed.
	Step *loader.Step

	// StepIndex is the index of this step (0-based).
	StepIndex int

	// Passed indicates if the step passed.
	Passed bool

	// Answer is what the dispatcher answered.
	Answer string

	// Error is the error that caused failure, if any.
	Error error

	// Duration is how long the step took, delay excluded.
	Duration time.Duration
}

// SuiteResult represents the outcome of running a set of scripts.
type SuiteResult struct {
	// SuiteName identifies the suite.
	SuiteName string

	// Results contains results for each script.
	Results []*TestResult

	// PassCount is the number of passed tests.
	PassCount int

	// FailCount is the number of failed tests.
	FailCount int

	// SkipCount is the number of skipped tests.
	SkipCount int

	// Duration is the total time for all tests.
	Duration time.Duration
}

// EngineConfig configures the engine.
type EngineConfig struct {
	// PTSAddr is the PTS dongle address passed with every MMI.
	PTSAddr []byte

	// DefaultTimeout bounds a script that sets no timeout.
	DefaultTimeout time.Duration

	// StepTimeout bounds a step that sets no timeout.
	StepTimeout time.Duration

	// DefaultSettle is waited after the last step of a script that sets
	// no settle time.
	DefaultSettle time.Duration

	// StopOnFirstFailure stops a suite after the first failed test.
	StopOnFirstFailure bool

	// PICS filters scripts by their requirements. Nil runs everything.
	PICS *loader.PICSFile

	// OnTestComplete is called after each test of a suite.
	OnTestComplete func(*TestResult)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		DefaultTimeout: 30 * time.Second,
		StepTimeout:    10 * time.Second,
		DefaultSettle:  3 * time.Second,
	}
}
