package grpcagent_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/agent"
	grpcagent "github.com/kennethnrk/edgernetes-kernels/internal/agent/api/grpc"
	"github.com/kennethnrk/edgernetes-kernels/internal/agent/manifest"
	"github.com/kennethnrk/edgernetes-kernels/internal/agent/utils"
	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	grpcregistry "github.com/kennethnrk/edgernetes-kernels/internal/control-plane/api/grpc/registry"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/store"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"github.com/kennethnrk/edgernetes-kernels/internal/registryclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const kernelsYAML = `
kernels:
  - op: MatMul
    devices: [CPU, GPU]
    constraints:
      - name: T
        types: [float32, float64]
  - op: Conv2D
    devices: [GPU]
    priority: 2
`

func serve(t *testing.T) grpc.DialOption {
	t.Helper()

	s, err := store.New(t.TempDir())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	grpcregistry.RegisterServices(srv, s, zap.NewNop())
	served := make(chan struct{})
	go func() {
		defer close(served)
		_ = srv.Serve(lis)
	}()
	t.Cleanup(func() {
		srv.Stop()
		<-served
		_ = s.Close()
	})

	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestRegisterKernelsWithControlPlane(t *testing.T) {
	dialer := serve(t)

	m, err := manifest.Parse([]byte(kernelsYAML))
	require.NoError(t, err)
	defs, err := m.KernelDefs()
	require.NoError(t, err)

	cpuOnly := []utils.Device{{Type: constants.DeviceCPU, Cores: 4}}
	a := agent.New("edge-1", cpuOnly, defs, false)
	require.Len(t, a.Kernels, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, grpcagent.RegisterKernelsWithControlPlane(ctx, "passthrough:///bufnet", a, zap.NewNop(), dialer))
	require.Len(t, a.KernelIDs, 1)
	assert.NotEmpty(t, a.KernelIDs[0])

	// A second round finds everything already registered.
	again := agent.New("edge-1", cpuOnly, defs, false)
	require.NoError(t, grpcagent.RegisterKernelsWithControlPlane(ctx, "passthrough:///bufnet", again, zap.NewNop(), dialer))
	assert.Equal(t, []string{""}, again.KernelIDs)

	client, err := registryclient.Dial("passthrough:///bufnet", dialer)
	require.NoError(t, err)
	defer client.Close()

	records, err := client.ListKernels(ctx, "", "", "edge-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "MatMul", records[0].Def.Op)

	got, err := client.FindKernel(ctx, kernel.Query{
		Op:         "MatMul",
		DeviceType: constants.DeviceCPU,
		Attrs:      map[string]constants.DataType{"T": constants.DTDouble},
	})
	require.NoError(t, err)
	assert.Equal(t, a.KernelIDs[0], got.ID)

	_, err = client.GetKernel(ctx, "missing")
	assert.True(t, registryclient.IsNotFound(err))
}
