package pandora

import (
	"context"

	"google.golang.org/grpc"
)

// HostClient controls links on the device under test.
type HostClient interface {
	// Connect opens an outgoing link.
	Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectResponse, error)

	// WaitConnection blocks until the peer opens a link to the device.
	WaitConnection(ctx context.Context, in *WaitConnectionRequest, opts ...grpc.CallOption) (*WaitConnectionResponse, error)
}

type hostClient struct {
	cc grpc.ClientConnInterface
}

// NewHostClient returns a HostClient bound to cc.
func NewHostClient(cc grpc.ClientConnInterface) HostClient {
	return &hostClient{cc: cc}
}

func (c *hostClient) Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectResponse, error) {
	out := new(ConnectResponse)
	if err := c.cc.Invoke(ctx, HostConnectMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hostClient) WaitConnection(ctx context.Context, in *WaitConnectionRequest, opts ...grpc.CallOption) (*WaitConnectionResponse, error) {
	out := new(WaitConnectionResponse)
	if err := c.cc.Invoke(ctx, HostWaitConnectionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// HostServer is implemented by a device-under-test control server.
type HostServer interface {
	Connect(context.Context, *ConnectRequest) (*ConnectResponse, error)
	WaitConnection(context.Context, *WaitConnectionRequest) (*WaitConnectionResponse, error)
}

// HostServiceDesc describes the Host service.
var HostServiceDesc = grpc.ServiceDesc{
	ServiceName: HostServiceName,
	HandlerType: (*HostServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Connect",
			Handler:    unaryHandler(HostConnectMethod, HostServer.Connect),
		},
		{
			MethodName: "WaitConnection",
			Handler:    unaryHandler(HostWaitConnectionMethod, HostServer.WaitConnection),
		},
	},
	Metadata: "pandora/host",
}

// RegisterHostServer registers srv on s.
func RegisterHostServer(s grpc.ServiceRegistrar, srv HostServer) {
	s.RegisterService(&HostServiceDesc, srv)
}
