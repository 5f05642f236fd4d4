package pandora

import (
	"context"

	"google.golang.org/grpc"
)

// SecurityClient manages bonds on the device under test.
type SecurityClient interface {
	DeletePairing(ctx context.Context, in *DeletePairingRequest, opts ...grpc.CallOption) (*Empty, error)
}

type securityClient struct {
	cc grpc.ClientConnInterface
}

// NewSecurityClient returns a SecurityClient bound to cc.
func NewSecurityClient(cc grpc.ClientConnInterface) SecurityClient {
	return &securityClient{cc: cc}
}

func (c *securityClient) DeletePairing(ctx context.Context, in *DeletePairingRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, SecurityDeletePairingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SecurityServer is implemented by a device-under-test control server.
type SecurityServer interface {
	DeletePairing(context.Context, *DeletePairingRequest) (*Empty, error)
}

// SecurityServiceDesc describes the Security service.
var SecurityServiceDesc = grpc.ServiceDesc{
	ServiceName: SecurityServiceName,
	HandlerType: (*SecurityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "DeletePairing",
			Handler:    unaryHandler(SecurityDeletePairingMethod, SecurityServer.DeletePairing),
		},
	},
	Metadata: "pandora/security",
}

// RegisterSecurityServer registers srv on s.
func RegisterSecurityServer(s grpc.ServiceRegistrar, srv SecurityServer) {
	s.RegisterService(&SecurityServiceDesc, srv)
}
