package agent

import (
	"strings"
	"testing"

	"github.com/kennethnrk/edgernetes-kernels/internal/agent/utils"
	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(t *testing.T, op string, device constants.DeviceType) kernel.KernelDef {
	t.Helper()
	b, err := kernel.NewKernelDefBuilder(op)
	require.NoError(t, err)
	d, err := b.Device(device).Build()
	require.NoError(t, err)
	return d
}

func TestNewFiltersByDetectedDevices(t *testing.T) {
	devices := []utils.Device{{Type: constants.DeviceCPU, Cores: 8}}
	defs := []kernel.KernelDef{
		def(t, "MatMul", constants.DeviceCPU),
		def(t, "MatMul", constants.DeviceGPU),
		def(t, "Fill", constants.DeviceCPU),
	}

	a := New("edge-1", devices, defs, false)
	assert.Equal(t, "edge-1", a.Name)
	require.Len(t, a.Kernels, 2)
	assert.Equal(t, "Fill", a.Kernels[1].Op)
	assert.Equal(t, []constants.DeviceType{constants.DeviceCPU}, a.DeviceTypes())

	all := New("edge-1", devices, defs, true)
	assert.Len(t, all.Kernels, 3)
}

func TestNewDefaultName(t *testing.T) {
	a := New("", nil, nil, false)
	assert.NotEmpty(t, a.Name)
	assert.Contains(t, a.Name, "-")
	assert.NotEqual(t, a.Name, New("", nil, nil, false).Name)
	assert.False(t, strings.HasPrefix(a.Name, "-"))
}
