// Package runner plays MMI scripts against a Pandora server: it resolves
// and dials the server, builds the profile proxy, then drives the engine
// and writes a report.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pts-bot/mmi2grpc/internal/config"
	"github.com/pts-bot/mmi2grpc/internal/testharness/engine"
	"github.com/pts-bot/mmi2grpc/internal/testharness/loader"
	"github.com/pts-bot/mmi2grpc/internal/testharness/reporter"
)

// Runner executes a suite of scripts.
type Runner struct {
	settings *config.Config
	opts     SessionOptions
	output   io.Writer
	session  *Session
}

// New creates a runner. Results are written to output.
func New(settings *config.Config, output io.Writer, opts SessionOptions) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{settings: settings, opts: opts, output: output}
}

// Close releases the session.
func (r *Runner) Close() error {
	if r.session == nil {
		return nil
	}
	return r.session.Close()
}

// Run loads the scripts, connects and runs them.
func (r *Runner) Run(ctx context.Context) (*engine.SuiteResult, error) {
	scripts, err := r.loadScripts()
	if err != nil {
		return nil, err
	}

	var pics *loader.PICSFile
	if r.settings.PICS != "" {
		pics, err = loader.LoadPICS(r.settings.PICS)
		if err != nil {
			return nil, Setup(err)
		}
	}

	ptsAddr, err := r.settings.PTSAddress()
	if err != nil {
		return nil, Setup(fmt.Errorf("%w: %v", config.ErrBadPTSAddr, err))
	}

	r.session, err = Connect(ctx, r.settings, r.opts)
	if err != nil {
		return nil, err
	}

	e := engine.NewWithConfig(r.session.Dispatcher, &engine.EngineConfig{
		PTSAddr:            ptsAddr,
		DefaultTimeout:     r.settings.Timeouts.Test,
		StepTimeout:        r.settings.Timeouts.Step,
		DefaultSettle:      r.settings.Timeouts.Settle,
		StopOnFirstFailure: r.settings.StopOnFirstFailure,
		PICS:               pics,
		OnTestComplete: func(tr *engine.TestResult) {
			r.opts.Logger.Info("test complete", "test", tr.Script.ID, "passed", tr.Passed, "skipped", tr.Skipped)
		},
	})
	e.SetLogger(r.opts.Logger)

	result := e.RunSuite(ctx, scripts)
	result.SuiteName = r.settings.Profile
	r.reporter().ReportSuite(result)
	return result, nil
}

func (r *Runner) loadScripts() ([]*loader.Script, error) {
	path := r.settings.Scripts
	info, err := os.Stat(path)
	if err != nil {
		return nil, Setup(fmt.Errorf("scripts: %w", err))
	}

	var scripts []*loader.Script
	if info.IsDir() {
		scripts, err = loader.LoadDirectory(path)
	} else {
		var sc *loader.Script
		sc, err = loader.LoadScript(path)
		scripts = []*loader.Script{sc}
	}
	if err != nil {
		return nil, Setup(err)
	}

	scripts = loader.FilterByPattern(scripts, r.settings.Filter)
	if len(scripts) == 0 {
		return nil, Setup(ErrNoScripts)
	}
	return scripts, nil
}

func (r *Runner) reporter() reporter.Reporter {
	switch r.settings.Report.Format {
	case "json":
		return reporter.NewJSONReporter(r.output, true)
	case "junit":
		return reporter.NewJUnitReporter(r.output)
	default:
		tr := reporter.NewTextReporter(r.output, r.settings.Report.Verbose)
		if r.settings.Report.NoColor {
			tr.DisableColor()
		}
		return tr
	}
}
