// Command pandora-sim serves a simulated device under test over the Pandora
// Host, Security and HFP services and advertises it over mDNS, so mmi2grpc
// can be exercised without Bluetooth hardware.
//
// Usage:
//
//	pandora-sim [flags]
//
// Flags:
//
//	-port int               Listen port (default 8999)
//	-instance string        mDNS instance name (default "pandora-sim-<hostname>")
//	-profiles string        Comma-separated profiles to advertise (default "HFP")
//	-address string         Simulated device Bluetooth address
//	-interface string       Network interface to advertise on (default all)
//	-wait-latency duration  Delay before WaitConnection returns a link
//	-no-advertise           Serve without mDNS advertising
//	-log-level string       debug, info, warn or error (default "info")
//	-version                Print the version and exit
//
// Examples:
//
//	# Serve on the default port and advertise over mDNS
//	pandora-sim
//
//	# Simulate a peer that takes a second to page the device
//	pandora-sim -wait-latency 1s -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pts-bot/mmi2grpc/pkg/discovery"
	"github.com/pts-bot/mmi2grpc/pkg/version"
)

var (
	port        = flag.Int("port", discovery.DefaultPort, "Listen port")
	instance    = flag.String("instance", "", "mDNS instance name (default pandora-sim-<hostname>)")
	profiles    = flag.String("profiles", "HFP", "Comma-separated profiles to advertise")
	address     = flag.String("address", "", "Simulated device Bluetooth address")
	iface       = flag.String("interface", "", "Network interface to advertise on (default all)")
	waitLatency = flag.Duration("wait-latency", 0, "Delay before WaitConnection returns a link")
	noAdvertise = flag.Bool("no-advertise", false, "Serve without mDNS advertising")
	logLevel    = flag.String("log-level", "info", "debug, info, warn or error")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.Banner("pandora-sim"))
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := SimConfig{
		Instance:    *instance,
		Profiles:    splitList(*profiles),
		Address:     *address,
		WaitLatency: *waitLatency,
		Logger:      logger,
	}
	if cfg.Instance == "" {
		cfg.Instance = defaultInstance()
	}
	if !*noAdvertise {
		adv := discovery.DefaultAdvertiserConfig()
		adv.Interface = *iface
		cfg.Advertiser = discovery.NewMDNSAdvertiser(adv)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("Failed to listen on port %d: %v", *port, err)
	}

	log.Printf("Pandora simulator listening on %s", lis.Addr())
	log.Printf("Profiles: %s", strings.Join(cfg.Profiles, ","))
	if cfg.WaitLatency > 0 {
		log.Printf("WaitConnection latency: %s", cfg.WaitLatency)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sim := NewSimulator(cfg)
	if err := sim.Serve(ctx, lis); err != nil {
		log.Fatalf("Simulator stopped: %v", err)
	}
	log.Printf("Served %d calls", len(sim.Device().Calls()))
}

func defaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "pandora-sim"
	}
	return "pandora-sim-" + strings.SplitN(host, ".", 2)[0]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// shutdownGrace bounds how long in-flight calls may run after a signal.
const shutdownGrace = 5 * time.Second
