package grpcregistry

import (
	"context"
	"time"

	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RegisterServices registers all gRPC services with the given gRPC server.
func RegisterServices(s *grpc.Server, store *store.Store, logger *zap.Logger) {
	kernelSrv := NewKernelRegistryServer(store, logger)
	kernelpb.RegisterKernelRegistryAPIServer(s, kernelSrv)
}

// LoggingInterceptor logs every unary call with its status code and latency.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("rpc served", fields...)
		}
		return resp, err
	}
}
