package hfp

import (
	"context"

	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc"

	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

type mockHost struct{ mock.Mock }

func (m *mockHost) Connect(ctx context.Context, in *pandora.ConnectRequest, _ ...grpc.CallOption) (*pandora.ConnectResponse, error) {
	ret := m.Called(ctx, in)
	var r *pandora.ConnectResponse
	if ret.Get(0) != nil {
		r = ret.Get(0).(*pandora.ConnectResponse)
	}
	return r, ret.Error(1)
}

func (m *mockHost) WaitConnection(ctx context.Context, in *pandora.WaitConnectionRequest, _ ...grpc.CallOption) (*pandora.WaitConnectionResponse, error) {
	ret := m.Called(ctx, in)
	var r *pandora.WaitConnectionResponse
	if ret.Get(0) != nil {
		r = ret.Get(0).(*pandora.WaitConnectionResponse)
	}
	return r, ret.Error(1)
}

type mockSecurity struct{ mock.Mock }

func (m *mockSecurity) DeletePairing(ctx context.Context, in *pandora.DeletePairingRequest, _ ...grpc.CallOption) (*pandora.Empty, error) {
	ret := m.Called(ctx, in)
	return emptyOrNil(ret), ret.Error(1)
}

type mockHFP struct{ mock.Mock }

func (m *mockHFP) EnableSlc(ctx context.Context, in *pandora.EnableSlcRequest, _ ...grpc.CallOption) (*pandora.Empty, error) {
	ret := m.Called(ctx, in)
	return emptyOrNil(ret), ret.Error(1)
}

func (m *mockHFP) DisableSlc(ctx context.Context, in *pandora.DisableSlcRequest, _ ...grpc.CallOption) (*pandora.Empty, error) {
	ret := m.Called(ctx, in)
	return emptyOrNil(ret), ret.Error(1)
}

func (m *mockHFP) SetBatteryLevel(ctx context.Context, in *pandora.SetBatteryLevelRequest, _ ...grpc.CallOption) (*pandora.Empty, error) {
	ret := m.Called(ctx, in)
	return emptyOrNil(ret), ret.Error(1)
}

func emptyOrNil(ret mock.Arguments) *pandora.Empty {
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(*pandora.Empty)
}
