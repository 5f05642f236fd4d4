package mmi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
)

type stubProxy struct {
	mock.Mock
	profile string
}

func (p *stubProxy) Profile() string { return p.profile }

func (p *stubProxy) TestStarted(ctx context.Context, test string, addr []byte) (string, error) {
	ret := p.Called(ctx, test, addr)
	return ret.String(0), ret.Error(1)
}

func (p *stubProxy) Interact(ctx context.Context, req *Request) (string, error) {
	ret := p.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

type capture struct {
	mu     sync.Mutex
	events []mmilog.Event
}

func (c *capture) Log(ev mmilog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *stubProxy, *capture) {
	t.Helper()
	events := &capture{}
	d := NewDispatcher(DispatcherConfig{
		SessionID:   "sess-1",
		EventLogger: events,
		Logger:      slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	p := &stubProxy{profile: "HFP"}
	d.Register(p)
	return d, p, events
}

var ptsAddr = []byte{0x00, 0x1b, 0xdc, 0x07, 0x32, 0x8c}

func TestDispatcher_RoutesByTestPrefix(t *testing.T) {
	d, p, events := newTestDispatcher(t)
	req := &Request{Test: "HFP/AG/SLC/BV-01-C", Name: "TSC_iut_search", PTSAddr: ptsAddr}
	p.On("Interact", mock.Anything, req).Return(AnswerOK, nil)

	answer, err := d.Interact(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, AnswerOK, answer)
	p.AssertExpectations(t)

	require.Len(t, events.events, 2)
	in, out := events.events[0], events.events[1]
	assert.Equal(t, mmilog.DirectionIn, in.Direction)
	assert.Equal(t, "TSC_iut_search", in.MMI.Name)
	assert.Equal(t, ptsAddr, in.MMI.Address)
	assert.Equal(t, "HFP", in.Profile)
	assert.Equal(t, "sess-1", in.SessionID)
	assert.Equal(t, mmilog.DirectionOut, out.Direction)
	assert.Equal(t, AnswerOK, out.MMI.Answer)
	assert.NotNil(t, out.MMI.Duration)
}

func TestDispatcher_ExplicitProfileWins(t *testing.T) {
	d, p, _ := newTestDispatcher(t)
	req := &Request{Profile: "HFP", Test: "UNKNOWN/X", Name: "TSC_iut_search"}
	p.On("Interact", mock.Anything, req).Return(AnswerOK, nil)

	_, err := d.Interact(context.Background(), req)
	require.NoError(t, err)
}

func TestDispatcher_UnknownProfile(t *testing.T) {
	d, _, events := newTestDispatcher(t)

	_, err := d.Interact(context.Background(), &Request{Test: "A2DP/SRC/CC/BV-09-I", Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Empty(t, events.events)

	_, err = d.TestStarted(context.Background(), "AVRCP/TG/CEC/BV-01-I", ptsAddr)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestDispatcher_ProxyErrorIsReturnedAndCaptured(t *testing.T) {
	d, p, events := newTestDispatcher(t)
	boom := errors.New("rpc error: code = Unavailable")
	req := &Request{Test: "HFP/AG/SLC/BV-02-C", Name: "TSC_iut_connect"}
	p.On("Interact", mock.Anything, req).Return("", boom)

	answer, err := d.Interact(context.Background(), req)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, answer)

	require.Len(t, events.events, 2)
	failed := events.events[1]
	assert.Equal(t, mmilog.CategoryError, failed.Category)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "TSC_iut_connect", failed.Error.Context)
}

func TestDispatcher_TestStarted(t *testing.T) {
	d, p, events := newTestDispatcher(t)
	p.On("TestStarted", mock.Anything, "HFP/AG/WBS/BV-01-I", ptsAddr).Return(AnswerOK, nil)

	answer, err := d.TestStarted(context.Background(), "HFP/AG/WBS/BV-01-I", ptsAddr)
	require.NoError(t, err)
	assert.Equal(t, AnswerOK, answer)
	p.AssertExpectations(t)

	require.Len(t, events.events, 1)
	assert.Equal(t, mmilog.CategoryLifecycle, events.events[0].Category)
	assert.Equal(t, "HFP/AG/WBS/BV-01-I", events.events[0].Test)
}

func TestDispatcher_GeneratesSessionID(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	assert.Len(t, d.SessionID(), 36)
	assert.NotEqual(t, d.SessionID(), NewDispatcher(DispatcherConfig{}).SessionID())
}

func TestDispatcher_Profiles(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	d.Register(&stubProxy{profile: "A2DP"})
	assert.Equal(t, []string{"A2DP", "HFP"}, d.Profiles())
}
