package mmi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// SessionID tags captured events. A random UUID is used when empty.
	SessionID string

	// EventLogger receives MMI events. Defaults to NoopLogger.
	EventLogger mmilog.Logger

	// Logger is the operational logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// Dispatcher routes MMIs to the proxy registered for their profile.
// The PTS sends one MMI at a time; the dispatcher itself does not
// serialise calls.
type Dispatcher struct {
	sessionID string
	events    mmilog.Logger
	logger    *slog.Logger

	mu      sync.RWMutex
	proxies map[string]Proxy
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.New().String()
	}
	if cfg.EventLogger == nil {
		cfg.EventLogger = mmilog.NoopLogger{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		sessionID: cfg.SessionID,
		events:    cfg.EventLogger,
		logger:    cfg.Logger.With("session", cfg.SessionID),
		proxies:   make(map[string]Proxy),
	}
}

// SessionID returns the id used to tag events.
func (d *Dispatcher) SessionID() string {
	return d.sessionID
}

// Register adds a proxy, replacing any proxy for the same profile.
func (d *Dispatcher) Register(p Proxy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.proxies[p.Profile()] = p
}

// Profiles returns the registered profile names, sorted.
func (d *Dispatcher) Profiles() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.proxies))
	for name := range d.proxies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Proxy returns the proxy registered for profile.
func (d *Dispatcher) Proxy(profile string) (Proxy, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.proxies[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return p, nil
}

// TestStarted notifies the proxy for the test's profile that a test case begins.
func (d *Dispatcher) TestStarted(ctx context.Context, test string, ptsAddr []byte) (string, error) {
	profile := ProfileFromTest(test)
	p, err := d.Proxy(profile)
	if err != nil {
		return "", err
	}

	d.logger.Info("test started", "profile", profile, "test", test, "pts", FormatAddress(ptsAddr))
	d.events.Log(mmilog.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Direction: mmilog.DirectionIn,
		Layer:     mmilog.LayerMMI,
		Category:  mmilog.CategoryLifecycle,
		Profile:   profile,
		Test:      test,
	})

	return p.TestStarted(ctx, test, ptsAddr)
}

// Interact handles one MMI. Errors from the proxy are returned unchanged.
func (d *Dispatcher) Interact(ctx context.Context, req *Request) (string, error) {
	profile := req.Profile
	if profile == "" {
		profile = ProfileFromTest(req.Test)
	}
	p, err := d.Proxy(profile)
	if err != nil {
		return "", err
	}

	d.events.Log(mmilog.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Direction: mmilog.DirectionIn,
		Layer:     mmilog.LayerMMI,
		Category:  mmilog.CategoryMessage,
		Profile:   profile,
		Test:      req.Test,
		MMI: &mmilog.MMIEvent{
			Name:        req.Name,
			Description: req.Description,
			Address:     req.PTSAddr,
		},
	})

	start := time.Now()
	answer, err := p.Interact(ctx, req)
	elapsed := time.Since(start)

	out := mmilog.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Direction: mmilog.DirectionOut,
		Layer:     mmilog.LayerMMI,
		Category:  mmilog.CategoryMessage,
		Profile:   profile,
		Test:      req.Test,
		MMI: &mmilog.MMIEvent{
			Name:     req.Name,
			Answer:   answer,
			Duration: &elapsed,
		},
	}
	if err != nil {
		out.Category = mmilog.CategoryError
		out.Error = &mmilog.ErrorEventData{
			Layer:   mmilog.LayerMMI,
			Message: err.Error(),
			Context: req.Name,
		}
		d.events.Log(out)
		d.logger.Warn("mmi failed", "profile", profile, "test", req.Test, "mmi", req.Name, "error", err)
		return "", err
	}
	d.events.Log(out)
	d.logger.Debug("mmi handled", "profile", profile, "test", req.Test, "mmi", req.Name, "answer", answer, "duration", elapsed)

	return answer, nil
}
