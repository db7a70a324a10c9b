package grpcagent

import (
	"context"
	"fmt"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/agent"
	"github.com/kennethnrk/edgernetes-kernels/internal/registryclient"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// RegisterTimeout bounds the whole registration round.
const RegisterTimeout = 10 * time.Second

// RegisterKernelsWithControlPlane publishes every kernel of the agent and
// records the assigned ids on it. Kernels the control-plane already holds
// are skipped, not treated as failures.
func RegisterKernelsWithControlPlane(ctx context.Context, controlPlaneAddr string, a *agent.Agent, logger *zap.Logger, opts ...grpc.DialOption) error {
	ctx, cancel := context.WithTimeout(ctx, RegisterTimeout)
	defer cancel()

	client, err := registryclient.Dial(controlPlaneAddr, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	a.KernelIDs = make([]string, len(a.Kernels))
	registered := 0
	for i, def := range a.Kernels {
		id, err := client.RegisterKernel(ctx, a.Name, def)
		if registryclient.IsAlreadyExists(err) {
			logger.Info("kernel already registered", zap.String("op", def.Op), zap.String("device", string(def.DeviceType)))
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s on %s: %w", def.Op, def.DeviceType, err)
		}
		a.KernelIDs[i] = id
		registered++
		logger.Debug("kernel registered",
			zap.String("id", id),
			zap.String("op", def.Op),
			zap.String("device", string(def.DeviceType)),
			zap.String("label", def.Label),
			zap.Int32("priority", def.Priority),
		)
	}

	logger.Info("registered kernels with control-plane",
		zap.String("node", a.Name),
		zap.Int("registered", registered),
		zap.Int("total", len(a.Kernels)),
	)
	return nil
}
