package pandora

import (
	"context"

	"google.golang.org/grpc"
)

// unaryHandler builds the Handler of a grpc.MethodDesc: it decodes Req,
// runs the server interceptor chain and calls fn on the registered
// implementation.
func unaryHandler[S any, Req any, Resp any](method string, fn func(S, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return fn(srv.(S), ctx, req.(*Req))
		})
	}
}
