// Package hfp answers the PTS MMIs of the Hands-Free Profile (Audio Gateway
// role) by driving the Host, Security and HFP control services of the
// device under test.
package hfp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"

	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
	"github.com/pts-bot/mmi2grpc/pkg/mmi"
	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

// Profile is the profile name served by Proxy.
const Profile = "HFP"

// WaitDelayBeforeConnection is how long a deferred WaitConnection waits
// before being sent, giving the PTS time to start paging.
const WaitDelayBeforeConnection = 2 * time.Second

// DisableSlcDelay is how long TSC_iut_disable_slc waits after answering
// before asking the device to drop the service level connection.
const DisableSlcDelay = 2 * time.Second

// Config configures a Proxy. Zero values select the defaults.
type Config struct {
	// WaitDelay delays the WaitConnection scheduled by TestStarted.
	WaitDelay time.Duration

	// DisableSlcDelay delays the DisableSlc call of TSC_iut_disable_slc.
	DisableSlcDelay time.Duration

	// SessionID tags captured events.
	SessionID string

	// EventLogger receives connection state changes and deferred action failures.
	EventLogger mmilog.Logger

	// Logger is the operational logger.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.WaitDelay == 0 {
		c.WaitDelay = WaitDelayBeforeConnection
	}
	if c.DisableSlcDelay == 0 {
		c.DisableSlcDelay = DisableSlcDelay
	}
	if c.EventLogger == nil {
		c.EventLogger = mmilog.NoopLogger{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Proxy is the HFP MMI handler set for one PTS session.
//
// It remembers the last connection opened or accepted on the device. Two
// MMIs finish their work on a background goroutine after answering; those
// goroutines are never cancelled and may overlap the next MMI.
type Proxy struct {
	host     pandora.HostClient
	security pandora.SecurityClient
	hfp      pandora.HFPClient

	cfg    Config
	logger *slog.Logger
	steps  *mmi.StepTable

	mu         sync.Mutex
	connection *pandora.Connection
}

// New creates a Proxy whose clients share cc.
func New(cc grpc.ClientConnInterface, cfg Config) *Proxy {
	return NewWithClients(pandora.NewHostClient(cc), pandora.NewSecurityClient(cc), pandora.NewHFPClient(cc), cfg)
}

// NewWithClients creates a Proxy from individual service clients.
func NewWithClients(host pandora.HostClient, security pandora.SecurityClient, hfp pandora.HFPClient, cfg Config) *Proxy {
	cfg.setDefaults()
	p := &Proxy{
		host:     host,
		security: security,
		hfp:      hfp,
		cfg:      cfg,
		logger:   cfg.Logger.With("profile", Profile),
	}
	p.steps = mmi.NewStepTable(p.stepList()...)
	return p
}

// Profile implements mmi.Proxy.
func (p *Proxy) Profile() string {
	return Profile
}

// Steps returns the MMI table.
func (p *Proxy) Steps() *mmi.StepTable {
	return p.steps
}

// Interact implements mmi.Proxy.
func (p *Proxy) Interact(ctx context.Context, req *mmi.Request) (string, error) {
	return p.steps.Interact(ctx, req)
}

// TestStarted implements mmi.Proxy. Tests in which the PTS opens the link
// right away get a WaitConnection scheduled before the first MMI arrives.
// The connection of the previous test is dropped first.
func (p *Proxy) TestStarted(ctx context.Context, test string, ptsAddr []byte) (string, error) {
	if p.Connection() != nil {
		p.setConnection(nil, "test started")
	}
	if waitConnectionBeforeTest[test] {
		p.scheduleWaitConnection(ctx, ptsAddr, p.cfg.WaitDelay)
	}
	return mmi.AnswerOK, nil
}

// Connection returns the current connection, or nil.
func (p *Proxy) Connection() *pandora.Connection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connection
}

func (p *Proxy) setConnection(c *pandora.Connection, reason string) {
	p.mu.Lock()
	old := p.connection
	p.connection = c
	p.mu.Unlock()

	p.cfg.EventLogger.Log(mmilog.Event{
		Timestamp: time.Now(),
		SessionID: p.cfg.SessionID,
		Layer:     mmilog.LayerProxy,
		Category:  mmilog.CategoryState,
		Profile:   Profile,
		StateChange: &mmilog.StateChangeEvent{
			Entity:   mmilog.StateEntityConnection,
			OldState: connState(old),
			NewState: connState(c),
			Reason:   reason,
		},
	})
}

func connState(c *pandora.Connection) string {
	if c == nil {
		return ""
	}
	return c.String()
}

// scheduleWaitConnection sends WaitConnection after delay and stores the
// accepted connection. The returned handle is not kept: the wait is never
// cancelled, and a failure only reaches the logs.
func (p *Proxy) scheduleWaitConnection(ctx context.Context, ptsAddr []byte, delay time.Duration) {
	p.logger.Info("scheduling deferred WaitConnection", "delay", delay)
	p.deferAction(ctx, "WaitConnection", delay, func(ctx context.Context) error {
		resp, err := p.host.WaitConnection(ctx, &pandora.WaitConnectionRequest{Address: ptsAddr})
		if err != nil {
			return err
		}
		p.setConnection(resp.Connection, "deferred WaitConnection")
		return nil
	})
}

// deferAction runs fn on its own goroutine after delay. fn gets a context
// that survives the MMI that scheduled it.
func (p *Proxy) deferAction(ctx context.Context, name string, delay time.Duration, fn func(context.Context) error) {
	bg := context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		if err := fn(bg); err != nil {
			p.logger.Warn("deferred action failed", "action", name, "error", err)
			p.cfg.EventLogger.Log(mmilog.Event{
				Timestamp: time.Now(),
				SessionID: p.cfg.SessionID,
				Layer:     mmilog.LayerProxy,
				Category:  mmilog.CategoryError,
				Profile:   Profile,
				Error: &mmilog.ErrorEventData{
					Layer:   mmilog.LayerRPC,
					Message: err.Error(),
					Context: "deferred " + name,
				},
			})
		}
	})
}
