package pandora

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	mmilog "github.com/pts-bot/mmi2grpc/pkg/log"
)

// DialOption configures Dial.
type DialOption func(*dialOptions)

type dialOptions struct {
	logger    mmilog.Logger
	sessionID string
	grpcOpts  []grpc.DialOption
}

// WithEventLogger records every unary call as an RPC event.
func WithEventLogger(logger mmilog.Logger, sessionID string) DialOption {
	return func(o *dialOptions) {
		o.logger = logger
		o.sessionID = sessionID
	}
}

// WithGRPCOptions appends raw gRPC dial options (tests use this for bufconn).
func WithGRPCOptions(opts ...grpc.DialOption) DialOption {
	return func(o *dialOptions) {
		o.grpcOpts = append(o.grpcOpts, opts...)
	}
}

// Dial creates a client connection to a Pandora server. The control plane
// runs on a lab network next to the DUT, so transport security is off.
func Dial(target string, opts ...DialOption) (*grpc.ClientConn, error) {
	var o dialOptions
	for _, opt := range opts {
		opt(&o)
	}

	grpcOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	if o.logger != nil {
		grpcOpts = append(grpcOpts, grpc.WithChainUnaryInterceptor(EventInterceptor(o.logger, o.sessionID)))
	}
	grpcOpts = append(grpcOpts, o.grpcOpts...)

	conn, err := grpc.NewClient(target, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial pandora server %s: %w", target, err)
	}
	return conn, nil
}

// EventInterceptor returns a client interceptor that logs the request
// before the call and the response (or status) after it.
func EventInterceptor(logger mmilog.Logger, sessionID string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		logger.Log(mmilog.Event{
			Timestamp: time.Now(),
			SessionID: sessionID,
			Direction: mmilog.DirectionOut,
			Layer:     mmilog.LayerRPC,
			Category:  mmilog.CategoryMessage,
			RPC:       &mmilog.RPCEvent{Method: method, Request: req},
		})

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		elapsed := time.Since(start)

		ev := mmilog.Event{
			Timestamp: time.Now(),
			SessionID: sessionID,
			Direction: mmilog.DirectionIn,
			Layer:     mmilog.LayerRPC,
			Category:  mmilog.CategoryMessage,
			RPC: &mmilog.RPCEvent{
				Method:   method,
				Status:   status.Code(err).String(),
				Duration: &elapsed,
			},
		}
		if err == nil {
			ev.RPC.Response = reply
		} else {
			ev.Category = mmilog.CategoryError
			ev.Error = &mmilog.ErrorEventData{
				Layer:   mmilog.LayerRPC,
				Message: err.Error(),
				Context: method,
			}
		}
		logger.Log(ev)

		return err
	}
}
