package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pts-bot/mmi2grpc/pkg/log"
)

const testSession = "4f1c2a9e-7b3d-4e6a-9c1f-0a2b3c4d5e6f"

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// sessionEvents is a small HFP session: TestStarted, one MMI with its RPC
// round trip, a connection state change and a failed deferred action.
func sessionEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	rpcTime := 3 * time.Millisecond
	mmiTime := 5 * time.Millisecond
	return []log.Event{
		{
			Timestamp: ts, SessionID: testSession, Direction: log.DirectionIn,
			Layer: log.LayerMMI, Category: log.CategoryLifecycle,
			Profile: "HFP", Test: "HFP/AG/SLC/BV-02-C",
		},
		{
			Timestamp: ts.Add(time.Second), SessionID: testSession, Direction: log.DirectionIn,
			Layer: log.LayerMMI, Category: log.CategoryMessage,
			Profile: "HFP", Test: "HFP/AG/SLC/BV-02-C",
			MMI: &log.MMIEvent{
				Name:        "TSC_iut_enable_slc",
				Description: "Click Ok, then initiate a service level connection",
				Address:     []byte{0x00, 0x1b, 0xdc, 0x07, 0x32, 0x8c},
			},
		},
		{
			Timestamp: ts.Add(time.Second + time.Millisecond), SessionID: testSession, Direction: log.DirectionOut,
			Layer: log.LayerRPC, Category: log.CategoryMessage,
			RPC: &log.RPCEvent{Method: "/pandora.Host/Connect", Request: map[string]any{"address": "001bdc07328c"}},
		},
		{
			Timestamp: ts.Add(time.Second + 4*time.Millisecond), SessionID: testSession, Direction: log.DirectionIn,
			Layer: log.LayerRPC, Category: log.CategoryMessage,
			RPC: &log.RPCEvent{Method: "/pandora.Host/Connect", Status: "OK", Duration: &rpcTime},
		},
		{
			Timestamp: ts.Add(time.Second + 5*time.Millisecond), SessionID: testSession,
			Layer: log.LayerProxy, Category: log.CategoryState, Profile: "HFP",
			StateChange: &log.StateChangeEvent{
				Entity: log.StateEntityConnection, NewState: "0a0b", Reason: "TSC_iut_enable_slc",
			},
		},
		{
			Timestamp: ts.Add(time.Second + 6*time.Millisecond), SessionID: testSession, Direction: log.DirectionOut,
			Layer: log.LayerMMI, Category: log.CategoryMessage,
			Profile: "HFP", Test: "HFP/AG/SLC/BV-02-C",
			MMI: &log.MMIEvent{Name: "TSC_iut_enable_slc", Answer: "OK", Duration: &mmiTime},
		},
		{
			Timestamp: ts.Add(3 * time.Second), SessionID: testSession,
			Layer: log.LayerProxy, Category: log.CategoryError, Profile: "HFP",
			Error: &log.ErrorEventData{Layer: log.LayerRPC, Message: "rpc error: code = NotFound", Context: "deferred DisableSlc"},
		},
	}
}
