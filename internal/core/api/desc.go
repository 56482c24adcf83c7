package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "formkeeper.evaluation.v1.EvaluationService"

// Full method names.
const (
	MethodEvaluateApplicability = "/" + ServiceName + "/EvaluateApplicability"
	MethodValidateAnswers       = "/" + ServiceName + "/ValidateAnswers"
	MethodPutQuestionSet        = "/" + ServiceName + "/PutQuestionSet"
)

// EvaluationServer is the server API. Every message is a
// google.protobuf.Struct holding the JSON contract of the method.
type EvaluationServer interface {
	EvaluateApplicability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateAnswers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutQuestionSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(EvaluationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvaluationServer), ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc describes EvaluationService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EvaluateApplicability",
			Handler:    unaryHandler(MethodEvaluateApplicability, EvaluationServer.EvaluateApplicability),
		},
		{
			MethodName: "ValidateAnswers",
			Handler:    unaryHandler(MethodValidateAnswers, EvaluationServer.ValidateAnswers),
		},
		{
			MethodName: "PutQuestionSet",
			Handler:    unaryHandler(MethodPutQuestionSet, EvaluationServer.PutQuestionSet),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "formkeeper/evaluation/v1/evaluation.proto",
}

// RegisterEvaluationServer registers srv with s.
func RegisterEvaluationServer(s grpc.ServiceRegistrar, srv EvaluationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// EvaluationClient calls EvaluationService.
type EvaluationClient struct {
	cc grpc.ClientConnInterface
}

// NewEvaluationClient creates a client over cc.
func NewEvaluationClient(cc grpc.ClientConnInterface) *EvaluationClient {
	return &EvaluationClient{cc: cc}
}

func (c *EvaluationClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateApplicability calls the method of the same name.
func (c *EvaluationClient) EvaluateApplicability(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEvaluateApplicability, in, opts...)
}

// ValidateAnswers calls the method of the same name.
func (c *EvaluationClient) ValidateAnswers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodValidateAnswers, in, opts...)
}

// PutQuestionSet calls the method of the same name.
func (c *EvaluationClient) PutQuestionSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPutQuestionSet, in, opts...)
}
