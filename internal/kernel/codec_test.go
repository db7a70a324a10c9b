package kernel

import (
	"testing"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDef(t *testing.T) KernelDef {
	t.Helper()
	def, err := newBuilder(t, "MatMul").
		Device(constants.DeviceGPU).
		TypeConstraint("T", constants.DTHalf, constants.DTFloat).
		TypeConstraint("Tidx", constants.DTInt32).
		HostMemory("shape").
		Label("cudnn").
		Priority(5).
		Build()
	require.NoError(t, err)
	return def
}

func TestCodec_RoundTrips(t *testing.T) {
	def := sampleDef(t)

	text, err := MarshalText(def)
	require.NoError(t, err)
	fromText, err := UnmarshalText(text)
	require.NoError(t, err)
	assert.Equal(t, def, fromText)

	wire, err := Marshal(def)
	require.NoError(t, err)
	fromWire, err := Unmarshal(wire)
	require.NoError(t, err)
	assert.Equal(t, def, fromWire)

	js, err := MarshalProtoJSON(def)
	require.NoError(t, err)
	fromJSON, err := UnmarshalProtoJSON(js)
	require.NoError(t, err)
	assert.Equal(t, def, fromJSON)
}

func TestCodec_MarshalIsDeterministic(t *testing.T) {
	a, err := Marshal(sampleDef(t))
	require.NoError(t, err)
	b, err := Marshal(sampleDef(t))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodec_StringUsesTextFormat(t *testing.T) {
	def := sampleDef(t)
	parsed, err := UnmarshalText(def.String())
	require.NoError(t, err)
	assert.True(t, def.Equal(parsed))
}

func TestCodec_Errors(t *testing.T) {
	_, err := UnmarshalText("op: 'A' bogus: 1")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Unmarshal([]byte{0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = UnmarshalProtoJSON([]byte(`{"op": 3}`))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FromProto(kernelpb.NewMessage(kernelpb.KernelRecord))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleDef(t)))

	bad := sampleDef(t)
	bad.HostMemoryArgs = append(bad.HostMemoryArgs, "shape")
	assert.ErrorIs(t, Validate(bad), ErrInvalidArgument)

	// FromProto accepts what Validate rejects.
	def, err := UnmarshalText("op: 'A'")
	require.NoError(t, err)
	assert.ErrorIs(t, Validate(def), ErrInvalidArgument)
}

func TestKernelDef_EqualIsOrderSensitive(t *testing.T) {
	a, err := UnmarshalText("op: 'A' device_type: 'CPU' host_memory_arg: ['x', 'y']")
	require.NoError(t, err)
	b, err := UnmarshalText("op: 'A' device_type: 'CPU' host_memory_arg: ['y', 'x']")
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.Clone()))
}
