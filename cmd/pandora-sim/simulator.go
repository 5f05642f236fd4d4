package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/pts-bot/mmi2grpc/internal/testharness/mock"
	"github.com/pts-bot/mmi2grpc/pkg/discovery"
)

// SimConfig configures a Simulator.
type SimConfig struct {
	Instance    string
	Profiles    []string
	Address     string
	WaitLatency time.Duration

	// Advertiser publishes the server. Nil disables advertising.
	Advertiser discovery.Advertiser

	Logger *slog.Logger
}

// Simulator is a mock device served over gRPC.
type Simulator struct {
	cfg    SimConfig
	device *mock.Device
	server *grpc.Server
}

// NewSimulator creates a simulator around a fresh mock device.
func NewSimulator(cfg SimConfig) *Simulator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Simulator{cfg: cfg, device: mock.NewDevice()}
	s.device.WaitLatency = cfg.WaitLatency
	s.device.Handlers.OnCall = func(c mock.Call) {
		attrs := []any{"method", c.Method}
		if c.Connection != nil {
			attrs = append(attrs, "connection", c.Connection.String())
		}
		if c.BatteryPercentage != 0 {
			attrs = append(attrs, "battery", c.BatteryPercentage)
		}
		cfg.Logger.Debug("call received", attrs...)
	}

	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logCalls))
	s.device.Register(s.server)
	return s
}

// Device returns the simulated device.
func (s *Simulator) Device() *mock.Device {
	return s.device
}

func (s *Simulator) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.cfg.Logger.Info("rpc",
		"method", info.FullMethod,
		"status", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}

// Serve advertises the listener's port and serves until ctx is done.
func (s *Simulator) Serve(ctx context.Context, lis net.Listener) error {
	if s.cfg.Advertiser != nil {
		tcp, ok := lis.Addr().(*net.TCPAddr)
		if !ok {
			return fmt.Errorf("advertise: listener address %s is not TCP", lis.Addr())
		}
		info := &discovery.ServerInfo{
			Instance: s.cfg.Instance,
			Port:     tcp.Port,
			Profiles: s.cfg.Profiles,
			Address:  s.cfg.Address,
		}
		if err := s.cfg.Advertiser.Advertise(ctx, info); err != nil {
			return fmt.Errorf("advertise: %w", err)
		}
		defer s.cfg.Advertiser.Stop()
		s.cfg.Logger.Info("advertising", "instance", info.Instance, "port", info.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownGrace):
		s.server.Stop()
	}
	return nil
}
