// Package registryclient is a typed client for the control plane's
// KernelRegistryAPI.
package registryclient

import (
	"context"
	"fmt"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Client wraps a gRPC connection to the control plane.
type Client struct {
	conn *grpc.ClientConn
	api  *kernelpb.KernelRegistryAPIClient
}

// Dial connects to addr without transport security. Extra options are
// appended after the defaults.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to control plane %s: %w", addr, err)
	}
	return &Client{conn: conn, api: kernelpb.NewKernelRegistryAPIClient(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// RegisterKernel registers def on behalf of nodeName and returns its ID.
func (c *Client) RegisterKernel(ctx context.Context, nodeName string, def kernel.KernelDef) (string, error) {
	req := kernelpb.NewMessage(kernelpb.RegisterKernelRequest)
	kernelpb.SetString(req, "node_name", nodeName)
	kernelpb.SetMessage(req, "kernel", kernel.ToProto(def))

	resp, err := c.api.RegisterKernel(ctx, req)
	if err != nil {
		return "", err
	}
	return kernelpb.GetString(resp, "kernel_id"), nil
}

// DeRegisterKernel removes a kernel by ID.
func (c *Client) DeRegisterKernel(ctx context.Context, kernelID string) error {
	_, err := c.api.DeRegisterKernel(ctx, kernelIDMessage(kernelID))
	return err
}

// GetKernel fetches a kernel by ID.
func (c *Client) GetKernel(ctx context.Context, kernelID string) (kernel.Record, error) {
	resp, err := c.api.GetKernel(ctx, kernelIDMessage(kernelID))
	if err != nil {
		return kernel.Record{}, err
	}
	return kernel.RecordFromProto(resp)
}

// ListKernels lists kernels, optionally filtered by op, device type and node.
func (c *Client) ListKernels(ctx context.Context, op string, deviceType constants.DeviceType, nodeName string) ([]kernel.Record, error) {
	req := kernelpb.NewMessage(kernelpb.ListKernelsRequest)
	kernelpb.SetString(req, "op", op)
	kernelpb.SetString(req, "device_type", string(deviceType))
	kernelpb.SetString(req, "node_name", nodeName)

	resp, err := c.api.ListKernels(ctx, req)
	if err != nil {
		return nil, err
	}

	list := resp.Get(kernelpb.Field(kernelpb.ListKernelsResponse, "kernels")).List()
	records := make([]kernel.Record, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		r, err := kernel.RecordFromProto(list.Get(i).Message())
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// FindKernel resolves q to the kernel the control plane would pick.
func (c *Client) FindKernel(ctx context.Context, q kernel.Query) (kernel.Record, error) {
	resp, err := c.api.FindKernel(ctx, kernel.QueryToProto(q))
	if err != nil {
		return kernel.Record{}, err
	}
	return kernel.RecordFromProto(resp)
}

// SupportedDeviceTypes lists the device types able to run op with attrs.
func (c *Client) SupportedDeviceTypes(ctx context.Context, op string, attrs map[string]constants.DataType) ([]constants.DeviceType, error) {
	resp, err := c.api.SupportedDeviceTypes(ctx, kernel.QueryToProto(kernel.Query{Op: op, Attrs: attrs}))
	if err != nil {
		return nil, err
	}
	return deviceTypes(resp.Get(kernelpb.Field(kernelpb.SupportedDeviceTypesResponse, "device_types")).List()), nil
}

func deviceTypes(list protoreflect.List) []constants.DeviceType {
	out := make([]constants.DeviceType, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		out = append(out, constants.DeviceType(list.Get(i).String()))
	}
	return out
}

func kernelIDMessage(kernelID string) *dynamicpb.Message {
	m := kernelpb.NewMessage(kernelpb.KernelID)
	kernelpb.SetString(m, "kernel_id", kernelID)
	return m
}

// IsNotFound reports whether err is a NotFound status from the control plane.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsAlreadyExists reports whether err is an AlreadyExists status.
func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
