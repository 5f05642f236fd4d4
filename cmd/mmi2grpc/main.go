// Command mmi2grpc answers Bluetooth PTS MMIs by driving a device under test
// through its Pandora control services.
//
// It either replays MMI scripts (one per PTS test case) and reports the
// results, or opens an interactive console to send MMIs by hand.
//
// Usage:
//
//	mmi2grpc [flags] [test-pattern]
//
// Flags:
//
//	-config string        YAML configuration file
//	-target string        Pandora server address (host:port)
//	-discover             Browse mDNS for a Pandora server when -target is empty
//	-profile string       Profile to serve (default "HFP")
//	-pts-addr string      PTS dongle address (AA:BB:CC:DD:EE:FF)
//	-scripts string       Script file or directory
//	-pics string          PICS file used to filter scripts
//	-interactive          Start the MMI console instead of running scripts
//	-verbose              Show step details in text reports
//	-json                 Output results as JSON
//	-junit                Output results as JUnit XML
//	-no-color             Disable coloured text output
//	-log-level string     debug, info, warn or error
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-version              Print the version and exit
//
// Examples:
//
//	# Replay the HFP scripts against a local simulator
//	mmi2grpc -target localhost:8999 -scripts ./testdata/scripts/hfp
//
//	# Find the device over mDNS and run the SLC tests only
//	mmi2grpc -discover -scripts ./testdata/scripts/hfp "SLC/"
//
//	# Send MMIs by hand
//	mmi2grpc -target localhost:8999 -interactive
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/pts-bot/mmi2grpc/cmd/mmi2grpc/interactive"
	"github.com/pts-bot/mmi2grpc/internal/config"
	"github.com/pts-bot/mmi2grpc/internal/testharness/runner"
	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
	"github.com/pts-bot/mmi2grpc/pkg/version"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	target      = flag.String("target", "", "Pandora server address (host:port)")
	discover    = flag.Bool("discover", false, "Browse mDNS for a Pandora server when -target is empty")
	profile     = flag.String("profile", "", "Profile to serve (default HFP)")
	ptsAddr     = flag.String("pts-addr", "", "PTS dongle address (AA:BB:CC:DD:EE:FF)")
	scripts     = flag.String("scripts", "", "Script file or directory")
	pics        = flag.String("pics", "", "PICS file used to filter scripts")
	interact    = flag.Bool("interactive", false, "Start the MMI console instead of running scripts")
	verbose     = flag.Bool("verbose", false, "Show step details in text reports")
	jsonOut     = flag.Bool("json", false, "Output results as JSON")
	junitOut    = flag.Bool("junit", false, "Output results as JUnit XML")
	noColor     = flag.Bool("no-color", false, "Disable coloured text output")
	logLevel    = flag.String("log-level", "", "debug, info, warn or error")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.Banner("mmi2grpc"))
		return
	}

	settings, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(settings)
	if flag.NArg() > 0 {
		settings.Filter = flag.Arg(0)
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	if settings.Report.NoColor {
		color.NoColor = true
	}

	textOutput := settings.Report.Format == "text" || *interact
	if textOutput {
		log.SetFlags(log.Ltime)
		printBanner()
		if settings.Target != "" {
			log.Printf("Target: %s", settings.Target)
		} else {
			log.Printf("Target: discover %s", settings.Profile)
		}
		log.Printf("Profile: %s", settings.Profile)
		log.Printf("PTS: %s", settings.PTSAddr)
		if settings.Filter != "" {
			log.Printf("Pattern: %s", settings.Filter)
		}
		log.Println()
	}

	level, _ := settings.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	events := []mmilog.Logger{mmilog.NewSlogAdapter(logger.With("component", "events"))}
	var protocolLogger *mmilog.FileLogger
	if settings.ProtocolLog != "" {
		protocolLogger, err = mmilog.NewFileLogger(settings.ProtocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create protocol logger: %v\n", err)
			os.Exit(1)
		}
		defer protocolLogger.Close()
		events = append(events, protocolLogger)
		if textOutput {
			log.Printf("Protocol logging to: %s", settings.ProtocolLog)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := runner.SessionOptions{
		EventLogger: mmilog.NewMultiLogger(events...),
		Logger:      logger,
	}

	if *interact {
		if err := runInteractive(ctx, cancel, settings, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	out, closeOut, err := openOutput(settings.Report.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	r := runner.New(settings, out, opts)
	defer r.Close()

	result, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", runner.Category(err), err)
		os.Exit(1)
	}
	if result.FailCount > 0 {
		os.Exit(1)
	}
}

// applyFlags overrides file settings with the flags given on the command line.
func applyFlags(s *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "target":
			s.Target = *target
		case "discover":
			s.Discover = *discover
		case "profile":
			s.Profile = *profile
		case "pts-addr":
			s.PTSAddr = *ptsAddr
		case "scripts":
			s.Scripts = *scripts
		case "pics":
			s.PICS = *pics
		case "verbose":
			s.Report.Verbose = *verbose
		case "json":
			if *jsonOut {
				s.Report.Format = "json"
			}
		case "junit":
			if *junitOut {
				s.Report.Format = "junit"
			}
		case "no-color":
			s.Report.NoColor = *noColor
		case "log-level":
			s.LogLevel = *logLevel
		case "protocol-log":
			s.ProtocolLog = *protocolLog
		}
	})
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("report output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// stepLister is implemented by proxies that expose their MMI table.
type stepLister interface {
	Steps() *mmi.StepTable
}

func runInteractive(ctx context.Context, cancel context.CancelFunc, settings *config.Config, opts runner.SessionOptions) error {
	session, err := runner.Connect(ctx, settings, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	addr, _ := settings.PTSAddress()
	cfg := interactive.Config{Profile: settings.Profile, PTSAddr: addr}
	if p, err := session.Dispatcher.Proxy(settings.Profile); err == nil {
		if sl, ok := p.(stepLister); ok {
			cfg.MMIs = sl.Steps().Names()
		}
	}

	console, err := interactive.New(session.Dispatcher, cfg)
	if err != nil {
		return err
	}
	log.SetOutput(console.Stdout())
	console.Run(ctx, cancel)
	return nil
}

func printBanner() {
	fmt.Printf(`
  mmi2grpc
  ========
  PTS MMI to Pandora adapter
  %s
`, version.Banner("mmi2grpc"))
}
