package pandora

import (
	"context"

	"google.golang.org/grpc"
)

// HFPClient drives the Hands-Free Profile on the device under test.
type HFPClient interface {
	EnableSlc(ctx context.Context, in *EnableSlcRequest, opts ...grpc.CallOption) (*Empty, error)
	DisableSlc(ctx context.Context, in *DisableSlcRequest, opts ...grpc.CallOption) (*Empty, error)
	SetBatteryLevel(ctx context.Context, in *SetBatteryLevelRequest, opts ...grpc.CallOption) (*Empty, error)
}

type hfpClient struct {
	cc grpc.ClientConnInterface
}

// NewHFPClient returns an HFPClient bound to cc.
func NewHFPClient(cc grpc.ClientConnInterface) HFPClient {
	return &hfpClient{cc: cc}
}

func (c *hfpClient) EnableSlc(ctx context.Context, in *EnableSlcRequest, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, HFPEnableSlcMethod, in, opts)
}

func (c *hfpClient) DisableSlc(ctx context.Context, in *DisableSlcRequest, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, HFPDisableSlcMethod, in, opts)
}

func (c *hfpClient) SetBatteryLevel(ctx context.Context, in *SetBatteryLevelRequest, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, HFPSetBatteryLevelMethod, in, opts)
}

func (c *hfpClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// HFPServer is implemented by a device-under-test control server.
type HFPServer interface {
	EnableSlc(context.Context, *EnableSlcRequest) (*Empty, error)
	DisableSlc(context.Context, *DisableSlcRequest) (*Empty, error)
	SetBatteryLevel(context.Context, *SetBatteryLevelRequest) (*Empty, error)
}

// HFPServiceDesc describes the HFP service.
var HFPServiceDesc = grpc.ServiceDesc{
	ServiceName: HFPServiceName,
	HandlerType: (*HFPServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EnableSlc",
			Handler:    unaryHandler(HFPEnableSlcMethod, HFPServer.EnableSlc),
		},
		{
			MethodName: "DisableSlc",
			Handler:    unaryHandler(HFPDisableSlcMethod, HFPServer.DisableSlc),
		},
		{
			MethodName: "SetBatteryLevel",
			Handler:    unaryHandler(HFPSetBatteryLevelMethod, HFPServer.SetBatteryLevel),
		},
	},
	Metadata: "pandora/hfp",
}

// RegisterHFPServer registers srv on s.
func RegisterHFPServer(s grpc.ServiceRegistrar, srv HFPServer) {
	s.RegisterService(&HFPServiceDesc, srv)
}
