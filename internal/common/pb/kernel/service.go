package kernelpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const ServiceName = Package + ".KernelRegistryAPI"

// FullMethod returns the gRPC method path, e.g.
// "/edgernetes.kernel.KernelRegistryAPI/GetKernel".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// KernelRegistryAPIServer is the server API for the KernelRegistryAPI service.
// Requests and responses are dynamic messages of the schema in this package.
type KernelRegistryAPIServer interface {
	RegisterKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	DeRegisterKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	GetKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	ListKernels(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	FindKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	SupportedDeviceTypes(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
}

// UnimplementedKernelRegistryAPIServer can be embedded to have forward
// compatible implementations.
type UnimplementedKernelRegistryAPIServer struct{}

func (UnimplementedKernelRegistryAPIServer) RegisterKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterKernel not implemented")
}
func (UnimplementedKernelRegistryAPIServer) DeRegisterKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method DeRegisterKernel not implemented")
}
func (UnimplementedKernelRegistryAPIServer) GetKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method GetKernel not implemented")
}
func (UnimplementedKernelRegistryAPIServer) ListKernels(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method ListKernels not implemented")
}
func (UnimplementedKernelRegistryAPIServer) FindKernel(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method FindKernel not implemented")
}
func (UnimplementedKernelRegistryAPIServer) SupportedDeviceTypes(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method SupportedDeviceTypes not implemented")
}

type serverCall func(KernelRegistryAPIServer, context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)

func unaryHandler(name string, call serverCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		md := KernelRegistryAPI.Methods().ByName(protoreflect.Name(name))
		in := dynamicpb.NewMessage(md.Input())
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(KernelRegistryAPIServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(KernelRegistryAPIServer), ctx, req.(*dynamicpb.Message))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// KernelRegistryAPI_ServiceDesc is the grpc.ServiceDesc for the
// KernelRegistryAPI service.
var KernelRegistryAPI_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KernelRegistryAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterKernel",
			Handler:    unaryHandler("RegisterKernel", KernelRegistryAPIServer.RegisterKernel),
		},
		{
			MethodName: "DeRegisterKernel",
			Handler:    unaryHandler("DeRegisterKernel", KernelRegistryAPIServer.DeRegisterKernel),
		},
		{
			MethodName: "GetKernel",
			Handler:    unaryHandler("GetKernel", KernelRegistryAPIServer.GetKernel),
		},
		{
			MethodName: "ListKernels",
			Handler:    unaryHandler("ListKernels", KernelRegistryAPIServer.ListKernels),
		},
		{
			MethodName: "FindKernel",
			Handler:    unaryHandler("FindKernel", KernelRegistryAPIServer.FindKernel),
		},
		{
			MethodName: "SupportedDeviceTypes",
			Handler:    unaryHandler("SupportedDeviceTypes", KernelRegistryAPIServer.SupportedDeviceTypes),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: fileName,
}

// RegisterKernelRegistryAPIServer registers srv with s.
func RegisterKernelRegistryAPIServer(s grpc.ServiceRegistrar, srv KernelRegistryAPIServer) {
	s.RegisterService(&KernelRegistryAPI_ServiceDesc, srv)
}

// KernelRegistryAPIClient is the client API for the KernelRegistryAPI service.
type KernelRegistryAPIClient struct {
	cc grpc.ClientConnInterface
}

func NewKernelRegistryAPIClient(cc grpc.ClientConnInterface) *KernelRegistryAPIClient {
	return &KernelRegistryAPIClient{cc: cc}
}

func (c *KernelRegistryAPIClient) invoke(ctx context.Context, name string, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	md := KernelRegistryAPI.Methods().ByName(protoreflect.Name(name))
	out := dynamicpb.NewMessage(md.Output())
	if err := c.cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KernelRegistryAPIClient) RegisterKernel(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "RegisterKernel", in, opts...)
}

func (c *KernelRegistryAPIClient) DeRegisterKernel(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "DeRegisterKernel", in, opts...)
}

func (c *KernelRegistryAPIClient) GetKernel(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "GetKernel", in, opts...)
}

func (c *KernelRegistryAPIClient) ListKernels(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "ListKernels", in, opts...)
}

func (c *KernelRegistryAPIClient) FindKernel(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "FindKernel", in, opts...)
}

func (c *KernelRegistryAPIClient) SupportedDeviceTypes(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*dynamicpb.Message, error) {
	return c.invoke(ctx, "SupportedDeviceTypes", in, opts...)
}
