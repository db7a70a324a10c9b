package kernel

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// RecordToProto converts r to an edgernetes.kernel.KernelRecord message.
func RecordToProto(r Record) *dynamicpb.Message {
	m := kernelpb.NewMessage(kernelpb.KernelRecord)
	kernelpb.SetString(m, "kernel_id", r.ID)
	kernelpb.SetString(m, "node_name", r.NodeName)
	kernelpb.SetMessage(m, "kernel", ToProto(r.Def))
	if !r.RegisteredAt.IsZero() {
		m.Set(kernelpb.Field(kernelpb.KernelRecord, "registered_at_unix_nano"),
			protoreflect.ValueOfInt64(r.RegisteredAt.UnixNano()))
	}
	return m
}

// RecordFromProto converts an edgernetes.kernel.KernelRecord message.
func RecordFromProto(m protoreflect.Message) (Record, error) {
	if got, want := m.Descriptor().FullName(), kernelpb.KernelRecord.FullName(); got != want {
		return Record{}, fmt.Errorf("%w: message is %s, want %s", ErrInvalidArgument, got, want)
	}
	def, err := FromProto(kernelpb.GetMessage(m, "kernel"))
	if err != nil {
		return Record{}, err
	}
	r := Record{
		ID:       kernelpb.GetString(m, "kernel_id"),
		NodeName: kernelpb.GetString(m, "node_name"),
		Def:      def,
	}
	if ns := m.Get(kernelpb.Field(kernelpb.KernelRecord, "registered_at_unix_nano")).Int(); ns != 0 {
		r.RegisteredAt = time.Unix(0, ns)
	}
	return r, nil
}

// QueryToProto converts q to an edgernetes.kernel.FindKernelRequest.
// Attr bindings are emitted sorted by name.
func QueryToProto(q Query) *dynamicpb.Message {
	m := kernelpb.NewMessage(kernelpb.FindKernelRequest)
	kernelpb.SetString(m, "op", q.Op)
	kernelpb.SetString(m, "device_type", string(q.DeviceType))
	kernelpb.SetString(m, "label", q.Label)

	if len(q.Attrs) > 0 {
		list := m.Mutable(kernelpb.Field(kernelpb.FindKernelRequest, "attrs")).List()
		for _, name := range slices.Sorted(maps.Keys(q.Attrs)) {
			binding := kernelpb.NewMessage(kernelpb.TypeBinding)
			kernelpb.SetString(binding, "name", name)
			binding.Set(kernelpb.Field(kernelpb.TypeBinding, "type"),
				protoreflect.ValueOfEnum(protoreflect.EnumNumber(q.Attrs[name])))
			list.Append(protoreflect.ValueOfMessage(binding))
		}
	}
	return m
}

// QueryFromProto converts an edgernetes.kernel.FindKernelRequest.
func QueryFromProto(m protoreflect.Message) (Query, error) {
	if got, want := m.Descriptor().FullName(), kernelpb.FindKernelRequest.FullName(); got != want {
		return Query{}, fmt.Errorf("%w: message is %s, want %s", ErrInvalidArgument, got, want)
	}
	q := Query{
		Op:         kernelpb.GetString(m, "op"),
		DeviceType: constants.DeviceType(kernelpb.GetString(m, "device_type")),
		Label:      kernelpb.GetString(m, "label"),
		Attrs:      make(map[string]constants.DataType),
	}
	list := m.Get(kernelpb.Field(kernelpb.FindKernelRequest, "attrs")).List()
	for i := 0; i < list.Len(); i++ {
		binding := list.Get(i).Message()
		name := kernelpb.GetString(binding, "name")
		if _, dup := q.Attrs[name]; dup {
			return Query{}, fmt.Errorf("%w: attr %q bound twice", ErrInvalidArgument, name)
		}
		q.Attrs[name] = constants.DataType(binding.Get(kernelpb.Field(kernelpb.TypeBinding, "type")).Enum())
	}
	return q, nil
}
