package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PlannerServiceName is the fully-qualified gRPC service name.
const PlannerServiceName = "mirador.rul.v1.MaintenancePlanner"

const (
	PlannerScoreMethod             = "/" + PlannerServiceName + "/Score"
	PlannerGetParameterTableMethod = "/" + PlannerServiceName + "/GetParameterTable"
)

// PlannerServer is the server API for the MaintenancePlanner service.
type PlannerServer interface {
	// Score runs one scoring pass over the observations in the request.
	Score(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetParameterTable returns the 144 characteristic-time entries in use.
	GetParameterTable(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterPlannerServer attaches srv to the registrar.
func RegisterPlannerServer(s grpc.ServiceRegistrar, srv PlannerServer) {
	s.RegisterService(&PlannerServiceDesc, srv)
}

func plannerScoreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlannerServer).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PlannerScoreMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlannerServer).Score(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func plannerGetParameterTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlannerServer).GetParameterTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PlannerGetParameterTableMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlannerServer).GetParameterTable(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// PlannerServiceDesc describes the MaintenancePlanner service. Payloads are well-known
// Struct messages so no generated code is required.
var PlannerServiceDesc = grpc.ServiceDesc{
	ServiceName: PlannerServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: plannerScoreHandler},
		{MethodName: "GetParameterTable", Handler: plannerGetParameterTableHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// PlannerClient is the client API for the MaintenancePlanner service.
type PlannerClient struct {
	cc grpc.ClientConnInterface
}

// NewPlannerClient wraps a client connection.
func NewPlannerClient(cc grpc.ClientConnInterface) *PlannerClient {
	return &PlannerClient{cc: cc}
}

// Score invokes MaintenancePlanner/Score.
func (c *PlannerClient) Score(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PlannerScoreMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetParameterTable invokes MaintenancePlanner/GetParameterTable.
func (c *PlannerClient) GetParameterTable(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PlannerGetParameterTableMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
