package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/testing/protocmp"
)

func newBuilder(t *testing.T, op string) *KernelDefBuilder {
	t.Helper()
	b, err := NewKernelDefBuilder(op)
	require.NoError(t, err)
	return b
}

// expectSuccess builds b and checks the result against the text proto want,
// both as a KernelDef and as a message.
func expectSuccess(t *testing.T, b *KernelDefBuilder, want string) KernelDef {
	t.Helper()
	got, err := b.Build()
	require.NoError(t, err)

	wantDef, err := UnmarshalText(want)
	require.NoError(t, err)
	assert.True(t, got.Equal(wantDef), "got %v\nwant %v", got, wantDef)

	wantMsg := kernelpb.NewMessage(kernelpb.KernelDef)
	require.NoError(t, prototext.Unmarshal([]byte(want), wantMsg))
	if diff := cmp.Diff(wantMsg, ToProto(got), protocmp.Transform()); diff != "" {
		t.Errorf("proto mismatch (-want +got):\n%s", diff)
	}
	return got
}

func TestKernelDefBuilder_Basic(t *testing.T) {
	expectSuccess(t, newBuilder(t, "A").Device(constants.DeviceCPU),
		"op: 'A' device_type: 'CPU'")
}

func TestKernelDefBuilder_TypeConstraint(t *testing.T) {
	expectSuccess(t, TypeConstraintOf[float32](newBuilder(t, "B").Device(constants.DeviceGPU), "T"),
		"op: 'B' device_type: 'GPU' constraint { name: 'T' allowed_values { list { type: DT_FLOAT } } }")

	expectSuccess(t, TypeConstraintOf[bool](TypeConstraintOf[int32](newBuilder(t, "C").Device(constants.DeviceGPU), "U"), "V"),
		`op: 'C' device_type: 'GPU'
		 constraint { name: 'U' allowed_values { list { type: DT_INT32 } } }
		 constraint { name: 'V' allowed_values { list { type: DT_BOOL } } }`)

	expectSuccess(t, newBuilder(t, "D").Device(constants.DeviceCPU).TypeConstraint("W", constants.DTDouble, constants.DTString),
		"op: 'D' device_type: 'CPU' constraint { name: 'W' allowed_values { list { type: [DT_DOUBLE, DT_STRING] } } }")
}

func TestKernelDefBuilder_HostMemory(t *testing.T) {
	got := expectSuccess(t, newBuilder(t, "E").Device(constants.DeviceGPU).HostMemory("in").HostMemory("out"),
		"op: 'E' device_type: 'GPU' host_memory_arg: ['in', 'out']")
	assert.True(t, got.IsHostMemoryArg("out"))
	assert.False(t, got.IsHostMemoryArg("other"))
}

func TestKernelDefBuilder_LabelAndPriority(t *testing.T) {
	expectSuccess(t, newBuilder(t, "F").Device(constants.DeviceCPU).Label("fast").Priority(7),
		"op: 'F' device_type: 'CPU' label: 'fast' priority: 7")
}

func TestKernelDefBuilder_DeviceLastWins(t *testing.T) {
	got, err := newBuilder(t, "A").Device(constants.DeviceCPU).Device(constants.DeviceTPU).Build()
	require.NoError(t, err)
	assert.Equal(t, constants.DeviceTPU, got.DeviceType)
}

func TestKernelDefBuilder_Errors(t *testing.T) {
	_, err := NewKernelDefBuilder("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	tests := []struct {
		name  string
		build func(b *KernelDefBuilder) *KernelDefBuilder
	}{
		{"no device", func(b *KernelDefBuilder) *KernelDefBuilder { return b }},
		{"empty device", func(b *KernelDefBuilder) *KernelDefBuilder { return b.Device("") }},
		{"empty attr", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("", constants.DTFloat)
		}},
		{"no types", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("T")
		}},
		{"invalid type", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("T", constants.DTInvalid)
		}},
		{"unknown type", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("T", constants.DataType(999))
		}},
		{"unmapped Go type", func(b *KernelDefBuilder) *KernelDefBuilder {
			return TypeConstraintOf[struct{}](b.Device(constants.DeviceCPU), "T")
		}},
		{"type listed twice", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("T", constants.DTFloat, constants.DTFloat)
		}},
		{"duplicate constraint", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).TypeConstraint("T", constants.DTFloat).TypeConstraint("T", constants.DTInt32)
		}},
		{"empty host memory arg", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).HostMemory("")
		}},
		{"duplicate host memory arg", func(b *KernelDefBuilder) *KernelDefBuilder {
			return b.Device(constants.DeviceCPU).HostMemory("in").HostMemory("in")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(newBuilder(t, "Op")).Build()
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestKernelDefBuilder_ErrorIsSticky(t *testing.T) {
	b := newBuilder(t, "A").Device(constants.DeviceCPU).HostMemory("x").HostMemory("x")
	first := b.Err()
	require.ErrorIs(t, first, ErrInvalidArgument)
	assert.Contains(t, first.Error(), `"x"`)

	// Later calls, valid or not, neither clear nor replace the error.
	b.Label("ok").TypeConstraint("", constants.DTFloat).Priority(1)
	assert.Equal(t, first, b.Err())

	_, err := b.Build()
	assert.Equal(t, first, err)
}

func TestKernelDefBuilder_BuildReturnsIndependentCopies(t *testing.T) {
	b := newBuilder(t, "A").Device(constants.DeviceCPU).
		TypeConstraint("T", constants.DTFloat, constants.DTHalf).
		HostMemory("in")

	first, err := b.Build()
	require.NoError(t, err)

	first.Constraints[0].AllowedTypes[0] = constants.DTBool
	first.HostMemoryArgs[0] = "mutated"

	b.HostMemory("out")
	second, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []constants.DataType{constants.DTFloat, constants.DTHalf}, second.Constraints[0].AllowedTypes)
	assert.Equal(t, []string{"in", "out"}, second.HostMemoryArgs)
	assert.Equal(t, []string{"mutated"}, first.HostMemoryArgs)
}
