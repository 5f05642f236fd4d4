package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"

	"github.com/pts-bot/mmi2grpc/internal/config"
	"github.com/pts-bot/mmi2grpc/pkg/discovery"
	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
	"github.com/pts-bot/mmi2grpc/pkg/mmi/hfp"
	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

// ProxyFactory builds the proxy of one profile over cc.
type ProxyFactory func(cc grpc.ClientConnInterface, s *config.Config, sessionID string, events mmilog.Logger, logger *slog.Logger) mmi.Proxy

// proxyFactories lists the profiles the adapter can serve.
var proxyFactories = map[string]ProxyFactory{
	hfp.Profile: func(cc grpc.ClientConnInterface, s *config.Config, sessionID string, events mmilog.Logger, logger *slog.Logger) mmi.Proxy {
		return hfp.New(cc, hfp.Config{
			WaitDelay:       s.HFP.WaitDelay,
			DisableSlcDelay: s.HFP.DisableSlcDelay,
			SessionID:       sessionID,
			EventLogger:     events,
			Logger:          logger,
		})
	},
}

// Session is one connection to a Pandora server with its dispatcher.
type Session struct {
	Target     string
	Dispatcher *mmi.Dispatcher
	conn       *grpc.ClientConn
}

// Close closes the gRPC connection.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// SessionOptions are the collaborators of Connect.
type SessionOptions struct {
	// Browser resolves the target when discovery is enabled.
	Browser discovery.Browser

	// EventLogger receives MMI, RPC and state events.
	EventLogger mmilog.Logger

	// Logger is the operational logger.
	Logger *slog.Logger

	// DialOptions are appended to the gRPC dial options.
	DialOptions []grpc.DialOption
}

// Connect resolves the target, dials it and registers the proxy for the
// configured profile.
func Connect(ctx context.Context, s *config.Config, opts SessionOptions) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.EventLogger == nil {
		opts.EventLogger = mmilog.NoopLogger{}
	}

	factory, ok := proxyFactories[s.Profile]
	if !ok {
		return nil, Setup(fmt.Errorf("%w: %s", ErrUnknownProfile, s.Profile))
	}

	target, err := resolveTarget(ctx, s, opts)
	if err != nil {
		return nil, err
	}

	disp := mmi.NewDispatcher(mmi.DispatcherConfig{
		EventLogger: opts.EventLogger,
		Logger:      opts.Logger,
	})

	conn, err := pandora.Dial(target,
		pandora.WithEventLogger(opts.EventLogger, disp.SessionID()),
		pandora.WithGRPCOptions(opts.DialOptions...))
	if err != nil {
		return nil, classify(fmt.Errorf("dial %s: %w", target, err))
	}
	if err := waitReady(ctx, conn, s.Timeouts.Dial); err != nil {
		conn.Close()
		return nil, Infrastructure(fmt.Errorf("dial %s: %w", target, err))
	}

	disp.Register(factory(conn, s, disp.SessionID(), opts.EventLogger, opts.Logger))
	opts.Logger.Info("connected", "target", target, "profile", s.Profile, "session", disp.SessionID())

	return &Session{Target: target, Dispatcher: disp, conn: conn}, nil
}

// waitReady starts connecting and blocks until conn is ready or timeout
// expires.
func waitReady(ctx context.Context, conn *grpc.ClientConn, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if state == connectivity.Shutdown {
			return ErrConnectionClosed
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("not ready after %v (last state %s): %w", timeout, state, ctx.Err())
		}
	}
}

// resolveTarget returns the configured target, or browses for one.
func resolveTarget(ctx context.Context, s *config.Config, opts SessionOptions) (string, error) {
	if s.Target != "" {
		return s.Target, nil
	}
	if !s.Discover {
		return "", Setup(config.ErrNoTarget)
	}

	browser := opts.Browser
	if browser == nil {
		browser = discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	}

	var target string
	err := retryWithBackoff(ctx, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}, func() error {
		findCtx, cancel := context.WithTimeout(ctx, s.Timeouts.Discover)
		defer cancel()
		srv, err := browser.FindFirst(findCtx, s.Profile)
		if err != nil {
			opts.Logger.Debug("discovery attempt failed", "error", err)
			return classify(err)
		}
		target = srv.Target()
		opts.Logger.Info("discovered pandora server", "instance", srv.Instance, "target", target)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("discover %s: %w", discovery.ServiceType, err)
	}
	return target, nil
}
