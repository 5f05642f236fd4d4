package log

import (
	"time"
)

// Event is a single captured occurrence in a PTS session.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the adapter session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow relative to the adapter.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Profile is the Bluetooth profile handling the session (e.g. "HFP").
	Profile string `cbor:"6,keyasint,omitempty"`

	// Test is the PTS test case identifier, when known.
	Test string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	MMI         *MMIEvent         `cbor:"10,keyasint,omitempty"`
	RPC         *RPCEvent         `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn is traffic arriving at the adapter (MMI from the PTS, RPC reply).
	DirectionIn Direction = 0
	// DirectionOut is traffic leaving the adapter (MMI answer, RPC request).
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerMMI is the test-controller side.
	LayerMMI Layer = 0
	// LayerRPC is the device-under-test control plane.
	LayerRPC Layer = 1
	// LayerProxy is the adapter's own state.
	LayerProxy Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerMMI:
		return "MMI"
	case LayerRPC:
		return "RPC"
	case LayerProxy:
		return "PROXY"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage is an MMI or RPC message.
	CategoryMessage Category = 0
	// CategoryLifecycle marks session lifecycle hooks (test started).
	CategoryLifecycle Category = 1
	// CategoryState is a state change.
	CategoryState Category = 2
	// CategoryError is an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MMIEvent captures a directive from the PTS or the answer to it.
type MMIEvent struct {
	// Name is the MMI name (e.g. "TSC_iut_enable_slc").
	Name string `cbor:"1,keyasint"`

	// Description is the PTS description text (inbound only).
	Description string `cbor:"2,keyasint,omitempty"`

	// Address is the PTS Bluetooth address.
	Address []byte `cbor:"3,keyasint,omitempty"`

	// Answer is the acknowledgement returned (outbound only).
	Answer string `cbor:"4,keyasint,omitempty"`

	// Duration is the time spent handling the MMI (outbound only).
	Duration *time.Duration `cbor:"5,keyasint,omitempty"`
}

// RPCEvent captures a unary call to the control plane.
type RPCEvent struct {
	// Method is the full gRPC method (e.g. "/pandora.Host/Connect").
	Method string `cbor:"1,keyasint"`

	// Request is the decoded request (outbound only).
	Request any `cbor:"2,keyasint,omitempty"`

	// Response is the decoded response (inbound only).
	Response any `cbor:"3,keyasint,omitempty"`

	// Status is the gRPC status code name.
	Status string `cbor:"4,keyasint,omitempty"`

	// Duration is the round-trip time (inbound only).
	Duration *time.Duration `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures adapter state transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (the MMI or deferred action that caused it).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityConnection is the stored connection handle.
	StateEntityConnection StateEntity = 0
	// StateEntityDeferred is a background action (scheduled, fired).
	StateEntityDeferred StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityDeferred:
		return "DEFERRED"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
