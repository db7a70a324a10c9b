package kernel

import (
	"fmt"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	kernelpb "github.com/kennethnrk/edgernetes-kernels/internal/common/pb/kernel"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var (
	textOptions = prototext.MarshalOptions{Multiline: true, Indent: "  "}
	jsonOptions = protojson.MarshalOptions{Multiline: true, Indent: "  "}
	wireOptions = proto.MarshalOptions{Deterministic: true}
)

// ToProto converts d to an edgernetes.kernel.KernelDef message.
func ToProto(d KernelDef) *dynamicpb.Message {
	m := kernelpb.NewMessage(kernelpb.KernelDef)
	kernelpb.SetString(m, "op", d.Op)
	kernelpb.SetString(m, "device_type", string(d.DeviceType))

	if len(d.Constraints) > 0 {
		list := m.Mutable(kernelpb.Field(kernelpb.KernelDef, "constraint")).List()
		for _, c := range d.Constraints {
			list.Append(protoreflect.ValueOfMessage(constraintToProto(c)))
		}
	}

	if len(d.HostMemoryArgs) > 0 {
		list := m.Mutable(kernelpb.Field(kernelpb.KernelDef, "host_memory_arg")).List()
		for _, arg := range d.HostMemoryArgs {
			list.Append(protoreflect.ValueOfString(arg))
		}
	}

	kernelpb.SetString(m, "label", d.Label)
	if d.Priority != 0 {
		m.Set(kernelpb.Field(kernelpb.KernelDef, "priority"), protoreflect.ValueOfInt32(d.Priority))
	}
	return m
}

func constraintToProto(c AttrConstraint) *dynamicpb.Message {
	list := kernelpb.NewMessage(kernelpb.ListValue)
	if len(c.AllowedTypes) > 0 {
		types := list.Mutable(kernelpb.Field(kernelpb.ListValue, "type")).List()
		for _, dt := range c.AllowedTypes {
			types.Append(protoreflect.ValueOfEnum(protoreflect.EnumNumber(dt)))
		}
	}

	allowed := kernelpb.NewMessage(kernelpb.AttrValue)
	kernelpb.SetMessage(allowed, "list", list)

	cm := kernelpb.NewMessage(kernelpb.AttrConstraint)
	kernelpb.SetString(cm, "name", c.Name)
	kernelpb.SetMessage(cm, "allowed_values", allowed)
	return cm
}

// FromProto converts an edgernetes.kernel.KernelDef message. It does not
// validate the result; see Validate.
func FromProto(m protoreflect.Message) (KernelDef, error) {
	if got, want := m.Descriptor().FullName(), kernelpb.KernelDef.FullName(); got != want {
		return KernelDef{}, fmt.Errorf("%w: message is %s, want %s", ErrInvalidArgument, got, want)
	}

	d := KernelDef{
		Op:         kernelpb.GetString(m, "op"),
		DeviceType: constants.DeviceType(kernelpb.GetString(m, "device_type")),
		Label:      kernelpb.GetString(m, "label"),
		Priority:   int32(m.Get(kernelpb.Field(kernelpb.KernelDef, "priority")).Int()),
	}

	constraints := m.Get(kernelpb.Field(kernelpb.KernelDef, "constraint")).List()
	for i := 0; i < constraints.Len(); i++ {
		cm := constraints.Get(i).Message()
		c := AttrConstraint{Name: kernelpb.GetString(cm, "name")}

		list := kernelpb.GetMessage(kernelpb.GetMessage(cm, "allowed_values"), "list")
		types := list.Get(kernelpb.Field(kernelpb.ListValue, "type")).List()
		for j := 0; j < types.Len(); j++ {
			c.AllowedTypes = append(c.AllowedTypes, constants.DataType(types.Get(j).Enum()))
		}
		d.Constraints = append(d.Constraints, c)
	}

	args := m.Get(kernelpb.Field(kernelpb.KernelDef, "host_memory_arg")).List()
	for i := 0; i < args.Len(); i++ {
		d.HostMemoryArgs = append(d.HostMemoryArgs, args.Get(i).String())
	}
	return d, nil
}

// Validate checks d against the same rules the builder enforces.
func Validate(d KernelDef) error {
	b, err := NewKernelDefBuilder(d.Op)
	if err != nil {
		return err
	}
	b.Device(d.DeviceType).Label(d.Label).Priority(d.Priority)
	for _, c := range d.Constraints {
		b.TypeConstraint(c.Name, c.AllowedTypes...)
	}
	for _, arg := range d.HostMemoryArgs {
		b.HostMemory(arg)
	}
	_, err = b.Build()
	return err
}

// MarshalText renders d in the protobuf text format. The exact whitespace
// is not stable across library versions; compare parsed values, not strings.
func MarshalText(d KernelDef) (string, error) {
	b, err := textOptions.Marshal(ToProto(d))
	if err != nil {
		return "", fmt.Errorf("marshal kernel def text: %w", err)
	}
	return string(b), nil
}

// UnmarshalText parses the protobuf text format, e.g.
// "op: 'E' device_type: 'GPU' host_memory_arg: ['in', 'out']".
func UnmarshalText(s string) (KernelDef, error) {
	m := kernelpb.NewMessage(kernelpb.KernelDef)
	if err := prototext.Unmarshal([]byte(s), m); err != nil {
		return KernelDef{}, fmt.Errorf("%w: parse kernel def text: %v", ErrInvalidArgument, err)
	}
	return FromProto(m)
}

// Marshal encodes d in the binary wire format. Output is deterministic.
func Marshal(d KernelDef) ([]byte, error) {
	b, err := wireOptions.Marshal(ToProto(d))
	if err != nil {
		return nil, fmt.Errorf("marshal kernel def: %w", err)
	}
	return b, nil
}

// Unmarshal decodes the binary wire format.
func Unmarshal(b []byte) (KernelDef, error) {
	m := kernelpb.NewMessage(kernelpb.KernelDef)
	if err := proto.Unmarshal(b, m); err != nil {
		return KernelDef{}, fmt.Errorf("%w: unmarshal kernel def: %v", ErrInvalidArgument, err)
	}
	return FromProto(m)
}

// MarshalProtoJSON renders d in the canonical protobuf JSON mapping.
func MarshalProtoJSON(d KernelDef) ([]byte, error) {
	b, err := jsonOptions.Marshal(ToProto(d))
	if err != nil {
		return nil, fmt.Errorf("marshal kernel def json: %w", err)
	}
	return b, nil
}

// UnmarshalProtoJSON parses the canonical protobuf JSON mapping.
func UnmarshalProtoJSON(b []byte) (KernelDef, error) {
	m := kernelpb.NewMessage(kernelpb.KernelDef)
	if err := protojson.Unmarshal(b, m); err != nil {
		return KernelDef{}, fmt.Errorf("%w: parse kernel def json: %v", ErrInvalidArgument, err)
	}
	return FromProto(m)
}
