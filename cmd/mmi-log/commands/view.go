// Package commands implements the mmi-log CLI commands.
package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pts-bot/mmi2grpc/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Test      string
	MMI       string
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
}

func (f ViewFilter) match(e log.Event) bool {
	if f.Test != "" && e.Test != f.Test {
		return false
	}
	if f.MMI != "" && (e.MMI == nil || e.MMI.Name != f.MMI) {
		return false
	}
	if f.Layer != nil && e.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && e.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	return true
}

// eventLabel names the payload carried by an event.
func eventLabel(event log.Event) string {
	switch {
	case event.MMI != nil:
		return event.MMI.Name
	case event.RPC != nil:
		return event.RPC.Method
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	case event.Category == log.CategoryLifecycle:
		return "TestStarted"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n",
		ts, shortenSessionID(event.SessionID), event.Direction.String(), event.Layer.String(), eventLabel(event))

	if event.Test != "" {
		fmt.Fprintf(w, "  Test: %s\n", event.Test)
	}

	switch {
	case event.MMI != nil:
		formatMMIDetails(w, event.MMI)
	case event.RPC != nil:
		formatRPCDetails(w, event.RPC)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatMMIDetails(w io.Writer, m *log.MMIEvent) {
	if m.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", strings.Join(strings.Fields(m.Description), " "))
	}
	if len(m.Address) > 0 {
		fmt.Fprintf(w, "  Address: %s\n", hex.EncodeToString(m.Address))
	}
	if m.Answer != "" {
		fmt.Fprintf(w, "  Answer: %s\n", m.Answer)
	}
	if m.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*m.Duration))
	}
}

func formatRPCDetails(w io.Writer, r *log.RPCEvent) {
	if r.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", r.Status)
	}
	if r.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*r.Duration))
	}
	if r.Request != nil {
		if b, err := json.Marshal(r.Request); err == nil {
			fmt.Fprintf(w, "  Request: %s\n", b)
		}
	}
	if r.Response != nil {
		if b, err := json.Marshal(r.Response); err == nil {
			fmt.Fprintf(w, "  Response: %s\n", b)
		}
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "mmi":
		return log.LayerMMI, nil
	case "rpc":
		return log.LayerRPC, nil
	case "proxy":
		return log.LayerProxy, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be mmi, rpc, or proxy)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "lifecycle":
		return log.CategoryLifecycle, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, lifecycle, state, or error)", s)
	}
}

// RunView prints every event of the capture matching filter.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if filter.match(event) {
			formatEvent(output, event)
		}
	}
}
