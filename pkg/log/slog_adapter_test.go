package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsMMIEvent(t *testing.T) {
	d := 3 * time.Millisecond
	entry := logJSON(t, Event{
		SessionID: "sess-1",
		Direction: DirectionOut,
		Layer:     LayerMMI,
		Profile:   "HFP",
		Test:      "HFP/AG/SLC/BV-01-C",
		MMI:       &MMIEvent{Name: "TSC_iut_connect", Answer: "OK", Duration: &d},
	})

	if entry["session"] != "sess-1" {
		t.Errorf("session: got %v", entry["session"])
	}
	if entry["direction"] != "OUT" {
		t.Errorf("direction: got %v", entry["direction"])
	}
	if entry["layer"] != "MMI" {
		t.Errorf("layer: got %v", entry["layer"])
	}
	if entry["mmi"] != "TSC_iut_connect" {
		t.Errorf("mmi: got %v", entry["mmi"])
	}
	if entry["answer"] != "OK" {
		t.Errorf("answer: got %v", entry["answer"])
	}
	if entry["profile"] != "HFP" {
		t.Errorf("profile: got %v", entry["profile"])
	}
}

func TestSlogAdapterLogsRPCEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Layer: LayerRPC,
		RPC:   &RPCEvent{Method: "/pandora.HFP/EnableSlc", Status: "OK"},
	})

	if entry["method"] != "/pandora.HFP/EnableSlc" {
		t.Errorf("method: got %v", entry["method"])
	}
	if entry["status"] != "OK" {
		t.Errorf("status: got %v", entry["status"])
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := logJSON(t, Event{
		Layer:    LayerProxy,
		Category: CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityConnection,
			OldState: "",
			NewState: "0a0b",
			Reason:   "TSC_iut_connect",
		},
	})

	if entry["entity"] != "CONNECTION" {
		t.Errorf("entity: got %v", entry["entity"])
	}
	if entry["new_state"] != "0a0b" {
		t.Errorf("new_state: got %v", entry["new_state"])
	}
	if entry["reason"] != "TSC_iut_connect" {
		t.Errorf("reason: got %v", entry["reason"])
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	entry := logJSON(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerRPC, Message: "unavailable", Context: "deferred WaitConnection"},
	})

	if entry["error_layer"] != "RPC" {
		t.Errorf("error_layer: got %v", entry["error_layer"])
	}
	if entry["error_msg"] != "unavailable" {
		t.Errorf("error_msg: got %v", entry["error_msg"])
	}
}
