package pandora

import (
	"encoding/hex"
)

// Connection identifies an established ACL link on the device under test.
// The cookie is opaque to clients and only meaningful to the server that issued it.
type Connection struct {
	Cookie []byte `cbor:"1,keyasint"`
}

// String returns the cookie in hex, or "<none>" for a nil connection.
func (c *Connection) String() string {
	if c == nil {
		return "<none>"
	}
	return hex.EncodeToString(c.Cookie)
}

// Equal reports whether two connections carry the same cookie.
func (c *Connection) Equal(other *Connection) bool {
	if c == nil || other == nil {
		return c == other
	}
	return string(c.Cookie) == string(other.Cookie)
}

// Empty is the request or response of calls that carry no data.
type Empty struct{}

// ConnectRequest asks the device to open a link to Address.
type ConnectRequest struct {
	Address []byte `cbor:"1,keyasint"`
}

// ConnectResponse carries the new link.
type ConnectResponse struct {
	Connection *Connection `cbor:"1,keyasint,omitempty"`
}

// WaitConnectionRequest asks the device to wait for an incoming link from Address.
type WaitConnectionRequest struct {
	Address []byte `cbor:"1,keyasint"`
}

// WaitConnectionResponse carries the accepted link.
type WaitConnectionResponse struct {
	Connection *Connection `cbor:"1,keyasint,omitempty"`
}

// DeletePairingRequest removes the bond with Address.
type DeletePairingRequest struct {
	Address []byte `cbor:"1,keyasint"`
}

// EnableSlcRequest establishes the HFP service level connection over Connection.
type EnableSlcRequest struct {
	Connection *Connection `cbor:"1,keyasint"`
}

// DisableSlcRequest tears down the HFP service level connection.
type DisableSlcRequest struct {
	Connection *Connection `cbor:"1,keyasint"`
}

// SetBatteryLevelRequest sets the battery level reported over HFP.
type SetBatteryLevelRequest struct {
	Connection        *Connection `cbor:"1,keyasint"`
	BatteryPercentage int32       `cbor:"2,keyasint"`
}
