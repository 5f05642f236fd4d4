// Package config loads the mmi2grpc configuration file.
//
// Every field has a default from its `default` tag; the YAML file only
// needs to name what differs. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"

	"github.com/pts-bot/mmi2grpc/pkg/mmi"
)

// Configuration errors.
var (
	ErrNoTarget     = errors.New("either target or discover must be set")
	ErrBadPTSAddr   = errors.New("invalid pts_addr")
	ErrBadFormat    = errors.New("unknown report format")
	ErrBadLogLevel  = errors.New("unknown log level")
	ErrBadTimeValue = errors.New("durations must not be negative")
)

// Config is the adapter configuration.
type Config struct {
	// Target is the gRPC address of the Pandora server.
	Target string `yaml:"target"`

	// Discover browses mDNS for a server when Target is empty.
	Discover bool `yaml:"discover"`

	// Profile selects the proxy and the discovery filter.
	Profile string `yaml:"profile" default:"HFP"`

	// PTSAddr is the PTS dongle address, "AA:BB:CC:DD:EE:FF".
	PTSAddr string `yaml:"pts_addr" default:"00:1B:DC:07:32:8C"`

	// Scripts is a script file or directory.
	Scripts string `yaml:"scripts"`

	// Filter keeps scripts whose id contains it.
	Filter string `yaml:"filter"`

	// PICS is an optional PICS file.
	PICS string `yaml:"pics"`

	// ProtocolLog is a file that receives CBOR event captures.
	ProtocolLog string `yaml:"protocol_log"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" default:"info"`

	// StopOnFirstFailure stops the suite after the first failed script.
	StopOnFirstFailure bool `yaml:"stop_on_first_failure"`

	Timeouts Timeouts `yaml:"timeouts"`
	HFP      HFP      `yaml:"hfp"`
	Report   Report   `yaml:"report"`
}

// Timeouts bounds the phases of a run.
type Timeouts struct {
	Dial     time.Duration `yaml:"dial" default:"10s"`
	Discover time.Duration `yaml:"discover" default:"10s"`
	Test     time.Duration `yaml:"test" default:"30s"`
	Step     time.Duration `yaml:"step" default:"10s"`
	Settle   time.Duration `yaml:"settle" default:"3s"`
}

// HFP tunes the HFP proxy.
type HFP struct {
	WaitDelay       time.Duration `yaml:"wait_delay" default:"2s"`
	DisableSlcDelay time.Duration `yaml:"disable_slc_delay" default:"2s"`
}

// Report selects the result output.
type Report struct {
	// Format is text, json or junit.
	Format string `yaml:"format" default:"text"`

	// Output is a file path; empty writes to stdout.
	Output string `yaml:"output"`

	Verbose bool `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`
}

// Default returns a Config holding only defaults.
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// Parse reads YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Load reads the file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the combined file and flag settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Target == "" && !c.Discover {
		errs = append(errs, ErrNoTarget)
	}
	if _, err := c.PTSAddress(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrBadPTSAddr, err))
	}
	switch c.Report.Format {
	case "text", "json", "junit":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadFormat, c.Report.Format))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	for _, d := range []time.Duration{
		c.Timeouts.Dial, c.Timeouts.Discover, c.Timeouts.Test, c.Timeouts.Step,
		c.Timeouts.Settle, c.HFP.WaitDelay, c.HFP.DisableSlcDelay,
	} {
		if d < 0 {
			errs = append(errs, ErrBadTimeValue)
			break
		}
	}
	return errors.Join(errs...)
}

// PTSAddress parses PTSAddr.
func (c *Config) PTSAddress() ([]byte, error) {
	return mmi.ParseAddress(c.PTSAddr)
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel)
	}
	return l, nil
}
