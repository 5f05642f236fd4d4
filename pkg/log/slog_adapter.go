package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Profile != "" {
		attrs = append(attrs, slog.String("profile", event.Profile))
	}
	if event.Test != "" {
		attrs = append(attrs, slog.String("test", event.Test))
	}

	switch {
	case event.MMI != nil:
		attrs = append(attrs, slog.String("mmi", event.MMI.Name))
		if event.MMI.Answer != "" {
			attrs = append(attrs, slog.String("answer", event.MMI.Answer))
		}
		if event.MMI.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.MMI.Duration))
		}
	case event.RPC != nil:
		attrs = append(attrs, slog.String("method", event.RPC.Method))
		if event.RPC.Status != "" {
			attrs = append(attrs, slog.String("status", event.RPC.Status))
		}
		if event.RPC.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.RPC.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "session", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
