// Package loader reads MMI scripts and PICS files for the scripted harness.
//
// A script replays the MMI sequence the PTS sends for one test case, so a
// proxy can be exercised against a device without the PTS attached.
package loader

import (
	"strconv"
	"time"
)

// Script is one PTS test case as a sequence of MMIs.
type Script struct {
	// ID is the PTS test case identifier (e.g., "HFP/AG/SLC/BV-01-C").
	ID string `yaml:"id"`

	// Name is a human-readable name.
	Name string `yaml:"name"`

	// Description explains what the test covers.
	Description string `yaml:"description"`

	// Profile overrides the profile derived from ID.
	Profile string `yaml:"profile,omitempty"`

	// PICSRequirements lists PICS items that must be supported to run.
	PICSRequirements []string `yaml:"pics_requirements"`

	// Steps are the MMIs, in the order the PTS sends them.
	Steps []Step `yaml:"steps"`

	// Settle is how long to wait after the last step so deferred actions
	// can complete (e.g., "3s").
	Settle string `yaml:"settle,omitempty"`

	// Timeout bounds the whole script (e.g., "30s").
	Timeout string `yaml:"timeout,omitempty"`

	// Tags for selecting scripts.
	Tags []string `yaml:"tags,omitempty"`

	// Skip disables the script.
	Skip bool `yaml:"skip,omitempty"`

	// SkipReason explains Skip.
	SkipReason string `yaml:"skip_reason,omitempty"`
}

// Step is one MMI sent to the proxy.
type Step struct {
	// MMI is the MMI name (e.g., "TSC_iut_enable_slc").
	MMI string `yaml:"mmi"`

	// Description is the PTS text. Empty skips description validation.
	Description string `yaml:"description,omitempty"`

	// Expect is the expected answer. Defaults to "OK".
	Expect string `yaml:"expect,omitempty"`

	// ExpectError marks steps that must fail.
	ExpectError bool `yaml:"expect_error,omitempty"`

	// Delay is waited before the MMI is sent (e.g., "500ms").
	Delay string `yaml:"delay,omitempty"`

	// Timeout overrides the step timeout.
	Timeout string `yaml:"timeout,omitempty"`
}

// PICSFile is a Protocol Implementation Conformance Statement: the
// capabilities declared for the implementation under test.
type PICSFile struct {
	// Name identifies this PICS configuration.
	Name string `yaml:"-"`

	// Device contains optional device metadata (YAML format only).
	Device PICSDevice `yaml:"device"`

	// Items maps PICS identifiers (e.g., "TSPC_HFP_1_1") to values.
	Items map[string]interface{} `yaml:"items"`
}

// PICSDevice identifies the implementation a PICS file describes.
type PICSDevice struct {
	Vendor  string `yaml:"vendor"`
	Product string `yaml:"product"`
	Version string `yaml:"version"`
}

// LoadError provides details about a loading error.
type LoadError struct {
	// File is the path that failed to load.
	File string

	// Line is the line number of the error (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.File
	if e.Line > 0 {
		msg += ":" + strconv.Itoa(e.Line)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseDuration parses an optional duration field. Empty yields fallback.
func ParseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
