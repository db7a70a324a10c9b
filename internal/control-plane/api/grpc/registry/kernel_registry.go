package grpcregistry

import (
	"context"
	"errors"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	registrycontroller "github.com/kennethnrk/edgernetes-kernels/internal/control-plane/controller/registry"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/store"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// kernelRegistryServer implements the KernelRegistryAPIServer interface.
type kernelRegistryServer struct {
	kernelpb.UnimplementedKernelRegistryAPIServer
	store  *store.Store
	logger *zap.Logger
}

// NewKernelRegistryServer creates a new kernel registry server.
func NewKernelRegistryServer(s *store.Store, logger *zap.Logger) kernelpb.KernelRegistryAPIServer {
	return &kernelRegistryServer{
		store:  s,
		logger: logger,
	}
}

// RegisterKernel validates and stores a kernel, returning its generated ID.
func (s *kernelRegistryServer) RegisterKernel(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	if !req.Has(kernelpb.Field(kernelpb.RegisterKernelRequest, "kernel")) {
		return nil, status.Error(codes.InvalidArgument, "kernel cannot be empty")
	}

	def, err := kernel.FromProto(kernelpb.GetMessage(req, "kernel"))
	if err != nil {
		return nil, toStatus(err)
	}

	nodeName := kernelpb.GetString(req, "node_name")
	kernelID, err := registrycontroller.RegisterKernel(s.store, nodeName, def)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("kernel registered",
		zap.String("kernel_id", kernelID),
		zap.String("op", def.Op),
		zap.String("device_type", string(def.DeviceType)),
		zap.String("node", nodeName),
	)

	resp := kernelpb.NewMessage(kernelpb.RegisterKernelResponse)
	kernelpb.SetString(resp, "kernel_id", kernelID)
	return resp, nil
}

// DeRegisterKernel removes a kernel from the registry.
func (s *kernelRegistryServer) DeRegisterKernel(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	kernelID := kernelpb.GetString(req, "kernel_id")
	if kernelID == "" {
		return nil, status.Error(codes.InvalidArgument, "kernel ID cannot be empty")
	}

	if err := registrycontroller.DeRegisterKernel(s.store, kernelID); err != nil {
		return boolResponse(false), toStatus(err)
	}
	s.logger.Info("kernel deregistered", zap.String("kernel_id", kernelID))
	return boolResponse(true), nil
}

// GetKernel retrieves a kernel by ID.
func (s *kernelRegistryServer) GetKernel(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	kernelID := kernelpb.GetString(req, "kernel_id")
	if kernelID == "" {
		return nil, status.Error(codes.InvalidArgument, "kernel ID cannot be empty")
	}

	r, found, err := registrycontroller.GetKernelByID(s.store, kernelID)
	if err != nil {
		return nil, toStatus(err)
	}
	if !found {
		return nil, status.Error(codes.NotFound, "kernel not found")
	}
	return kernel.RecordToProto(r), nil
}

// ListKernels returns the registered kernels matching the request filter.
func (s *kernelRegistryServer) ListKernels(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	records, err := registrycontroller.ListKernels(s.store, registrycontroller.ListFilter{
		Op:         kernelpb.GetString(req, "op"),
		DeviceType: constants.DeviceType(kernelpb.GetString(req, "device_type")),
		NodeName:   kernelpb.GetString(req, "node_name"),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := kernelpb.NewMessage(kernelpb.ListKernelsResponse)
	if len(records) > 0 {
		list := resp.Mutable(kernelpb.Field(kernelpb.ListKernelsResponse, "kernels")).List()
		for _, r := range records {
			list.Append(protoreflect.ValueOfMessage(kernel.RecordToProto(r)))
		}
	}
	return resp, nil
}

// FindKernel resolves an op, device type, label and attr bindings to the
// kernel that should run them.
func (s *kernelRegistryServer) FindKernel(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	q, err := kernel.QueryFromProto(req)
	if err != nil {
		return nil, toStatus(err)
	}
	r, err := registrycontroller.FindKernel(s.store, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return kernel.RecordToProto(r), nil
}

// SupportedDeviceTypes lists the device types able to run the requested op.
// The device_type and label fields of the request are ignored.
func (s *kernelRegistryServer) SupportedDeviceTypes(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	q, err := kernel.QueryFromProto(req)
	if err != nil {
		return nil, toStatus(err)
	}
	devices, err := registrycontroller.SupportedDeviceTypes(s.store, q.Op, q.Attrs)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := kernelpb.NewMessage(kernelpb.SupportedDeviceTypesResponse)
	if len(devices) > 0 {
		list := resp.Mutable(kernelpb.Field(kernelpb.SupportedDeviceTypesResponse, "device_types")).List()
		for _, d := range devices {
			list.Append(protoreflect.ValueOfString(string(d)))
		}
	}
	return resp, nil
}

func boolResponse(success bool) *dynamicpb.Message {
	resp := kernelpb.NewMessage(kernelpb.BoolResponse)
	if success {
		resp.Set(kernelpb.Field(kernelpb.BoolResponse, "success"), protoreflect.ValueOfBool(true))
	}
	return resp
}

// toStatus maps registry errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, kernel.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, kernel.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, kernel.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, kernel.ErrAmbiguousMatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
