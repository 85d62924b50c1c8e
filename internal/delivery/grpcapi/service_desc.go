package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RevenueService_RunCycle_FullMethodName      = "/rms.v1.RevenueService/RunCycle"
	RevenueService_Price_FullMethodName         = "/rms.v1.RevenueService/Price"
	RevenueService_OverridePrice_FullMethodName = "/rms.v1.RevenueService/OverridePrice"
	RevenueService_Push_FullMethodName          = "/rms.v1.RevenueService/Push"
	RevenueService_CheckParity_FullMethodName   = "/rms.v1.RevenueService/CheckParity"
	RevenueService_Simulate_FullMethodName      = "/rms.v1.RevenueService/Simulate"
)

type RevenueServiceServer interface {
	RunCycle(context.Context, *RunCycleRequest) (*CycleSummaryResponse, error)
	Price(context.Context, *PriceRequest) (*PriceResponse, error)
	OverridePrice(context.Context, *OverridePriceRequest) (*PriceResponse, error)
	Push(context.Context, *PushRequest) (*PushResponse, error)
	CheckParity(context.Context, *ParityRequest) (*ParityResponse, error)
	Simulate(*SimulateRequest, grpc.ServerStreamingServer[SimulationStep]) error
}

type UnimplementedRevenueServiceServer struct{}

func (UnimplementedRevenueServiceServer) RunCycle(context.Context, *RunCycleRequest) (*CycleSummaryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RunCycle not implemented")
}
func (UnimplementedRevenueServiceServer) Price(context.Context, *PriceRequest) (*PriceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Price not implemented")
}
func (UnimplementedRevenueServiceServer) OverridePrice(context.Context, *OverridePriceRequest) (*PriceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method OverridePrice not implemented")
}
func (UnimplementedRevenueServiceServer) Push(context.Context, *PushRequest) (*PushResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Push not implemented")
}
func (UnimplementedRevenueServiceServer) CheckParity(context.Context, *ParityRequest) (*ParityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckParity not implemented")
}
func (UnimplementedRevenueServiceServer) Simulate(*SimulateRequest, grpc.ServerStreamingServer[SimulationStep]) error {
	return status.Error(codes.Unimplemented, "method Simulate not implemented")
}

func RegisterRevenueServiceServer(s grpc.ServiceRegistrar, srv RevenueServiceServer) {
	s.RegisterService(&RevenueService_ServiceDesc, srv)
}

func unaryHandler[Req any, Res any](fullMethod string, call func(RevenueServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RevenueServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RevenueServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _RevenueService_Simulate_Handler(srv any, stream grpc.ServerStream) error {
	in := new(SimulateRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(RevenueServiceServer).Simulate(in, &grpc.GenericServerStream[SimulateRequest, SimulationStep]{ServerStream: stream})
}

// RevenueService_ServiceDesc описан вручную: сообщения - JSON, без protoc.
var RevenueService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "rms.v1.RevenueService",
	HandlerType: (*RevenueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunCycle", Handler: unaryHandler(RevenueService_RunCycle_FullMethodName, RevenueServiceServer.RunCycle)},
		{MethodName: "Price", Handler: unaryHandler(RevenueService_Price_FullMethodName, RevenueServiceServer.Price)},
		{MethodName: "OverridePrice", Handler: unaryHandler(RevenueService_OverridePrice_FullMethodName, RevenueServiceServer.OverridePrice)},
		{MethodName: "Push", Handler: unaryHandler(RevenueService_Push_FullMethodName, RevenueServiceServer.Push)},
		{MethodName: "CheckParity", Handler: unaryHandler(RevenueService_CheckParity_FullMethodName, RevenueServiceServer.CheckParity)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Simulate", Handler: _RevenueService_Simulate_Handler, ServerStreams: true},
	},
	Metadata: "rms/v1/revenue.proto",
}

type RevenueServiceClient interface {
	RunCycle(ctx context.Context, in *RunCycleRequest, opts ...grpc.CallOption) (*CycleSummaryResponse, error)
	Price(ctx context.Context, in *PriceRequest, opts ...grpc.CallOption) (*PriceResponse, error)
	OverridePrice(ctx context.Context, in *OverridePriceRequest, opts ...grpc.CallOption) (*PriceResponse, error)
	Push(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error)
	CheckParity(ctx context.Context, in *ParityRequest, opts ...grpc.CallOption) (*ParityResponse, error)
	Simulate(ctx context.Context, in *SimulateRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SimulationStep], error)
}

type revenueServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRevenueServiceClient(cc grpc.ClientConnInterface) RevenueServiceClient {
	return &revenueServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *revenueServiceClient) RunCycle(ctx context.Context, in *RunCycleRequest, opts ...grpc.CallOption) (*CycleSummaryResponse, error) {
	return invoke[CycleSummaryResponse](ctx, c.cc, RevenueService_RunCycle_FullMethodName, in, opts)
}

func (c *revenueServiceClient) Price(ctx context.Context, in *PriceRequest, opts ...grpc.CallOption) (*PriceResponse, error) {
	return invoke[PriceResponse](ctx, c.cc, RevenueService_Price_FullMethodName, in, opts)
}

func (c *revenueServiceClient) OverridePrice(ctx context.Context, in *OverridePriceRequest, opts ...grpc.CallOption) (*PriceResponse, error) {
	return invoke[PriceResponse](ctx, c.cc, RevenueService_OverridePrice_FullMethodName, in, opts)
}

func (c *revenueServiceClient) Push(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error) {
	return invoke[PushResponse](ctx, c.cc, RevenueService_Push_FullMethodName, in, opts)
}

func (c *revenueServiceClient) CheckParity(ctx context.Context, in *ParityRequest, opts ...grpc.CallOption) (*ParityResponse, error) {
	return invoke[ParityResponse](ctx, c.cc, RevenueService_CheckParity_FullMethodName, in, opts)
}

func (c *revenueServiceClient) Simulate(ctx context.Context, in *SimulateRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[SimulationStep], error) {
	stream, err := c.cc.NewStream(ctx, &RevenueService_ServiceDesc.Streams[0], RevenueService_Simulate_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SimulateRequest, SimulationStep]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
