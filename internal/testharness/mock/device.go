// Package mock provides a simulated device under test that serves the
// Pandora Host, Security and HFP services in process.
package mock

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

// Call is one RPC received by the device.
type Call struct {
	// Method is the full gRPC method name.
	Method string

	// Address is the peer address, for Host and Security calls.
	Address []byte

	// Connection is the link the call refers to, for HFP calls.
	Connection *pandora.Connection

	// BatteryPercentage is set for SetBatteryLevel.
	BatteryPercentage int32

	// Time is when the call arrived.
	Time time.Time
}

// Link is a simulated ACL link.
type Link struct {
	// Connection is the handle given to the client.
	Connection *pandora.Connection

	// Peer is the remote address.
	Peer []byte

	// SLC reports whether the HFP service level connection is up.
	SLC bool

	// BatteryPercentage is the last level reported over the link.
	BatteryPercentage int32
}

// DeviceHandlers holds optional callbacks.
type DeviceHandlers struct {
	// OnCall is called after a call is recorded, before it is served.
	OnCall func(Call)
}

// Device is a simulated device under test.
type Device struct {
	// WaitLatency delays WaitConnection, as if the peer took that long
	// to page the device.
	WaitLatency time.Duration

	// Handlers are callbacks for device operations.
	Handlers DeviceHandlers

	mu       sync.Mutex
	calls    []Call
	links    map[string]*Link
	bonds    map[string]bool
	failures map[string][]error
}

var (
	_ pandora.HostServer     = (*Device)(nil)
	_ pandora.SecurityServer = (*Device)(nil)
	_ pandora.HFPServer      = (*Device)(nil)
)

// NewDevice creates a device with no links and no bonds.
func NewDevice() *Device {
	return &Device{
		links:    make(map[string]*Link),
		bonds:    make(map[string]bool),
		failures: make(map[string][]error),
	}
}

// Register adds the Host, Security and HFP services to s.
func (d *Device) Register(s grpc.ServiceRegistrar) {
	pandora.RegisterHostServer(s, d)
	pandora.RegisterSecurityServer(s, d)
	pandora.RegisterHFPServer(s, d)
}

// FailNext makes the next call to method return err. Errors queue up.
func (d *Device) FailNext(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[method] = append(d.failures[method], err)
}

// Bond records a pairing with addr.
func (d *Device) Bond(addr []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bonds[hex.EncodeToString(addr)] = true
}

// Bonded reports whether the device holds a pairing with addr.
func (d *Device) Bonded(addr []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bonds[hex.EncodeToString(addr)]
}

// Calls returns a copy of every call received so far.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallsTo returns the calls received for method.
func (d *Device) CallsTo(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Link returns a copy of the link behind conn.
func (d *Device) Link(conn *pandora.Connection) (Link, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lookup(conn)
	if !ok {
		return Link{}, false
	}
	return *l, true
}

// LinkCount returns the number of links opened so far.
func (d *Device) LinkCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.links)
}

// record stores the call and pops an injected failure for its method.
func (d *Device) record(c Call) error {
	c.Time = time.Now()

	d.mu.Lock()
	d.calls = append(d.calls, c)
	var err error
	if q := d.failures[c.Method]; len(q) > 0 {
		err, d.failures[c.Method] = q[0], q[1:]
	}
	onCall := d.Handlers.OnCall
	d.mu.Unlock()

	if onCall != nil {
		onCall(c)
	}
	return err
}

func (d *Device) lookup(conn *pandora.Connection) (*Link, bool) {
	if conn == nil {
		return nil, false
	}
	l, ok := d.links[hex.EncodeToString(conn.Cookie)]
	return l, ok
}

func (d *Device) openLink(peer []byte) *pandora.Connection {
	id := uuid.New()
	conn := &pandora.Connection{Cookie: id[:]}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.links[hex.EncodeToString(conn.Cookie)] = &Link{Connection: conn, Peer: peer}
	return conn
}

// Connect implements pandora.HostServer.
func (d *Device) Connect(_ context.Context, in *pandora.ConnectRequest) (*pandora.ConnectResponse, error) {
	if err := d.record(Call{Method: pandora.HostConnectMethod, Address: in.Address}); err != nil {
		return nil, err
	}
	if len(in.Address) == 0 {
		return nil, status.Error(codes.InvalidArgument, ErrAddressRequired.Error())
	}
	return &pandora.ConnectResponse{Connection: d.openLink(in.Address)}, nil
}

// WaitConnection implements pandora.HostServer.
func (d *Device) WaitConnection(ctx context.Context, in *pandora.WaitConnectionRequest) (*pandora.WaitConnectionResponse, error) {
	if err := d.record(Call{Method: pandora.HostWaitConnectionMethod, Address: in.Address}); err != nil {
		return nil, err
	}
	if len(in.Address) == 0 {
		return nil, status.Error(codes.InvalidArgument, ErrAddressRequired.Error())
	}
	if d.WaitLatency > 0 {
		select {
		case <-time.After(d.WaitLatency):
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	}
	return &pandora.WaitConnectionResponse{Connection: d.openLink(in.Address)}, nil
}

// DeletePairing implements pandora.SecurityServer. Deleting a bond that
// does not exist succeeds.
func (d *Device) DeletePairing(_ context.Context, in *pandora.DeletePairingRequest) (*pandora.Empty, error) {
	if err := d.record(Call{Method: pandora.SecurityDeletePairingMethod, Address: in.Address}); err != nil {
		return nil, err
	}
	d.mu.Lock()
	delete(d.bonds, hex.EncodeToString(in.Address))
	d.mu.Unlock()
	return &pandora.Empty{}, nil
}

// EnableSlc implements pandora.HFPServer.
func (d *Device) EnableSlc(_ context.Context, in *pandora.EnableSlcRequest) (*pandora.Empty, error) {
	if err := d.record(Call{Method: pandora.HFPEnableSlcMethod, Connection: in.Connection}); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lookup(in.Connection)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%v: %s", ErrUnknownConnection, in.Connection)
	}
	l.SLC = true
	return &pandora.Empty{}, nil
}

// DisableSlc implements pandora.HFPServer.
func (d *Device) DisableSlc(_ context.Context, in *pandora.DisableSlcRequest) (*pandora.Empty, error) {
	if err := d.record(Call{Method: pandora.HFPDisableSlcMethod, Connection: in.Connection}); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lookup(in.Connection)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%v: %s", ErrUnknownConnection, in.Connection)
	}
	if !l.SLC {
		return nil, status.Error(codes.FailedPrecondition, ErrSlcNotEnabled.Error())
	}
	l.SLC = false
	return &pandora.Empty{}, nil
}

// SetBatteryLevel implements pandora.HFPServer.
func (d *Device) SetBatteryLevel(_ context.Context, in *pandora.SetBatteryLevelRequest) (*pandora.Empty, error) {
	err := d.record(Call{
		Method:            pandora.HFPSetBatteryLevelMethod,
		Connection:        in.Connection,
		BatteryPercentage: in.BatteryPercentage,
	})
	if err != nil {
		return nil, err
	}
	if in.BatteryPercentage < 0 || in.BatteryPercentage > 100 {
		return nil, status.Errorf(codes.InvalidArgument, "%v: %d", ErrInvalidBatteryLevel, in.BatteryPercentage)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lookup(in.Connection)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%v: %s", ErrUnknownConnection, in.Connection)
	}
	l.BatteryPercentage = in.BatteryPercentage
	return &pandora.Empty{}, nil
}
