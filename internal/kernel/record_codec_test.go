package kernel

import (
	"testing"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestRecordProto(t *testing.T) {
	r := Record{
		ID:           "k-1",
		NodeName:     "edge-1",
		Def:          sampleDef(t),
		RegisteredAt: time.Unix(1700000000, 42),
	}
	got, err := RecordFromProto(RecordToProto(r))
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.NodeName, got.NodeName)
	assert.True(t, r.Def.Equal(got.Def))
	assert.True(t, r.RegisteredAt.Equal(got.RegisteredAt))

	_, err = RecordFromProto(kernelpb.NewMessage(kernelpb.KernelDef))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestQueryProto(t *testing.T) {
	q := Query{
		Op:         "MatMul",
		DeviceType: constants.DeviceGPU,
		Label:      "cudnn",
		Attrs:      map[string]constants.DataType{"Tidx": constants.DTInt64, "T": constants.DTFloat},
	}
	m := QueryToProto(q)

	list := m.Get(kernelpb.Field(kernelpb.FindKernelRequest, "attrs")).List()
	require.Equal(t, 2, list.Len())
	assert.Equal(t, "T", kernelpb.GetString(list.Get(0).Message(), "name"))
	assert.Equal(t, "Tidx", kernelpb.GetString(list.Get(1).Message(), "name"))

	got, err := QueryFromProto(m)
	require.NoError(t, err)
	assert.Equal(t, q, got)
}

func TestQueryFromProto_DuplicateBinding(t *testing.T) {
	m := QueryToProto(Query{Op: "A", Attrs: map[string]constants.DataType{"T": constants.DTFloat}})
	list := m.Mutable(kernelpb.Field(kernelpb.FindKernelRequest, "attrs")).List()
	dup := kernelpb.NewMessage(kernelpb.TypeBinding)
	kernelpb.SetString(dup, "name", "T")
	list.Append(protoreflect.ValueOfMessage(dup))

	_, err := QueryFromProto(m)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
