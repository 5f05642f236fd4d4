package mmi2grpc_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/pts-bot/mmi2grpc/internal/config"
	"github.com/pts-bot/mmi2grpc/internal/testharness/mock"
	"github.com/pts-bot/mmi2grpc/internal/testharness/runner"
	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

// startSimulator serves a mock device on a loopback TCP port.
func startSimulator(t *testing.T) (*mock.Device, string) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	d := mock.NewDevice()
	srv := grpc.NewServer()
	d.Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return d, lis.Addr().String()
}

func readCapture(t *testing.T, path string) []mmilog.Event {
	t.Helper()
	r, err := mmilog.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var events []mmilog.Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestEndToEndBundledHFPSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the bundled scripts with their real delays")
	}

	d, target := startSimulator(t)

	s := config.Default()
	s.Target = target
	s.Scripts = filepath.Join("testdata", "scripts", "hfp")
	s.PICS = filepath.Join("testdata", "pics", "hfp-ag.pics")
	s.HFP.WaitDelay = 100 * time.Millisecond
	s.HFP.DisableSlcDelay = 100 * time.Millisecond
	s.Timeouts.Settle = 200 * time.Millisecond
	s.Report.Format = "text"
	s.Report.NoColor = true
	require.NoError(t, s.Validate())

	capture := filepath.Join(t.TempDir(), "suite.mlog")
	events, err := mmilog.NewFileLogger(capture)
	require.NoError(t, err)

	var out bytes.Buffer
	r := runner.New(s, &out, runner.SessionOptions{
		EventLogger: events,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := r.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, events.Close())

	assert.Equal(t, 6, result.PassCount, "report:\n%s", out.String())
	assert.Zero(t, result.FailCount, "report:\n%s", out.String())
	assert.Equal(t, 1, result.SkipCount)
	assert.Contains(t, out.String(), "HFP/AG/SLC/BV-02-C")

	// SLC/BV-03-C waits on connectable, SLC/BV-05-I before its first MMI.
	assert.Len(t, d.CallsTo(pandora.HostWaitConnectionMethod), 2)
	assert.NotEmpty(t, d.CallsTo(pandora.HFPDisableSlcMethod))

	var mmiIn, mmiOut, rpcOut, state int
	for _, e := range readCapture(t, capture) {
		switch {
		case e.MMI != nil && e.Direction == mmilog.DirectionIn:
			mmiIn++
		case e.MMI != nil:
			mmiOut++
			assert.Equal(t, "OK", e.MMI.Answer, e.MMI.Name)
		case e.RPC != nil && e.Direction == mmilog.DirectionOut:
			rpcOut++
		case e.StateChange != nil:
			state++
		}
	}
	assert.Equal(t, mmiIn, mmiOut)
	assert.Equal(t, len(d.Calls()), rpcOut)
	assert.NotZero(t, state)
}
