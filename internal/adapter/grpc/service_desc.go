package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProjectionServiceName is the fully-qualified gRPC service name
const ProjectionServiceName = "fundflow.v1.ProjectionService"

const (
	RunProjectionMethod = "/" + ProjectionServiceName + "/RunProjection"
	GetRunMethod        = "/" + ProjectionServiceName + "/GetRun"
	ListRunsMethod      = "/" + ProjectionServiceName + "/ListRuns"
)

// ProjectionServiceServer is the server API for ProjectionService.
// Requests and responses are google.protobuf.Struct documents.
type ProjectionServiceServer interface {
	RunProjection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ProjectionServiceDesc is the grpc.ServiceDesc for ProjectionService
var ProjectionServiceDesc = grpc.ServiceDesc{
	ServiceName: ProjectionServiceName,
	HandlerType: (*ProjectionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RunProjection",
			Handler:    runProjectionHandler,
		},
		{
			MethodName: "GetRun",
			Handler:    getRunHandler,
		},
		{
			MethodName: "ListRuns",
			Handler:    listRunsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundflow/v1/projection.proto",
}

// RegisterProjectionServiceServer registers srv with the gRPC server
func RegisterProjectionServiceServer(s grpc.ServiceRegistrar, srv ProjectionServiceServer) {
	s.RegisterService(&ProjectionServiceDesc, srv)
}

func runProjectionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProjectionServiceServer).RunProjection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RunProjectionMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProjectionServiceServer).RunProjection(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProjectionServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetRunMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProjectionServiceServer).GetRun(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listRunsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProjectionServiceServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListRunsMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProjectionServiceServer).ListRuns(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
