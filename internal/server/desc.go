package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "studynote.v1.StudyService"

// Full method names.
const (
	MethodNormalizeOCR           = "/" + ServiceName + "/NormalizeOCR"
	MethodExtractText            = "/" + ServiceName + "/ExtractText"
	MethodCreateReviewTask       = "/" + ServiceName + "/CreateReviewTask"
	MethodUpdateReviewTaskStatus = "/" + ServiceName + "/UpdateReviewTaskStatus"
	MethodListReviewTasks        = "/" + ServiceName + "/ListReviewTasks"
	MethodExportReviewTasks      = "/" + ServiceName + "/ExportReviewTasks"
)

// StudyServiceServer is the server API. Messages are protobuf well-known
// types; field names are documented on each handler.
type StudyServiceServer interface {
	NormalizeOCR(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractText(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	CreateReviewTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateReviewTaskStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReviewTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportReviewTasks(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

func RegisterStudyServiceServer(s grpc.ServiceRegistrar, srv StudyServiceServer) {
	s.RegisterService(&StudyServiceDesc, srv)
}

// unary builds a method handler for a request type In.
func unary[In any, Out any](method string, call func(StudyServiceServer, context.Context, *In) (*Out, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(In)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StudyServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StudyServiceServer), ctx, req.(*In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var StudyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StudyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "NormalizeOCR",
			Handler:    unary(MethodNormalizeOCR, StudyServiceServer.NormalizeOCR),
		},
		{
			MethodName: "ExtractText",
			Handler:    unary(MethodExtractText, StudyServiceServer.ExtractText),
		},
		{
			MethodName: "CreateReviewTask",
			Handler:    unary(MethodCreateReviewTask, StudyServiceServer.CreateReviewTask),
		},
		{
			MethodName: "UpdateReviewTaskStatus",
			Handler:    unary(MethodUpdateReviewTaskStatus, StudyServiceServer.UpdateReviewTaskStatus),
		},
		{
			MethodName: "ListReviewTasks",
			Handler:    unary(MethodListReviewTasks, StudyServiceServer.ListReviewTasks),
		},
		{
			MethodName: "ExportReviewTasks",
			Handler:    unary(MethodExportReviewTasks, StudyServiceServer.ExportReviewTasks),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

// StudyServiceClient is the client API for StudyService.
type StudyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStudyServiceClient(cc grpc.ClientConnInterface) *StudyServiceClient {
	return &StudyServiceClient{cc: cc}
}

func (c *StudyServiceClient) NormalizeOCR(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodNormalizeOCR, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StudyServiceClient) ExtractText(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodExtractText, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StudyServiceClient) CreateReviewTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodCreateReviewTask, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StudyServiceClient) UpdateReviewTaskStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodUpdateReviewTaskStatus, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StudyServiceClient) ListReviewTasks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListReviewTasks, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StudyServiceClient) ExportReviewTasks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodExportReviewTasks, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
