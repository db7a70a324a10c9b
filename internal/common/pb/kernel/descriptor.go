// Package kernelpb holds the edgernetes.kernel protobuf schema and the
// KernelRegistryAPI gRPC bindings. The schema is assembled from descriptor
// protos at init and messages are instantiated with dynamicpb, so no protoc
// step is needed.
package kernelpb

import (
	"fmt"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	// Package is the protobuf package of every message in the schema.
	Package  = "edgernetes.kernel"
	fileName = "edgernetes/kernel/kernel.proto"
)

// Descriptors for every message of the schema, resolved at init.
var (
	File protoreflect.FileDescriptor

	DataType protoreflect.EnumDescriptor

	ListValue                    protoreflect.MessageDescriptor
	AttrValue                    protoreflect.MessageDescriptor
	KernelDef                    protoreflect.MessageDescriptor
	AttrConstraint               protoreflect.MessageDescriptor
	KernelID                     protoreflect.MessageDescriptor
	RegisterKernelRequest        protoreflect.MessageDescriptor
	RegisterKernelResponse       protoreflect.MessageDescriptor
	KernelRecord                 protoreflect.MessageDescriptor
	ListKernelsRequest           protoreflect.MessageDescriptor
	ListKernelsResponse          protoreflect.MessageDescriptor
	TypeBinding                  protoreflect.MessageDescriptor
	FindKernelRequest            protoreflect.MessageDescriptor
	SupportedDeviceTypesResponse protoreflect.MessageDescriptor
	BoolResponse                 protoreflect.MessageDescriptor

	KernelRegistryAPI protoreflect.ServiceDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileProto(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("kernelpb: build file descriptor: %v", err))
	}
	File = fd
	DataType = fd.Enums().ByName("DataType")

	msgs := fd.Messages()
	ListValue = msgs.ByName("ListValue")
	AttrValue = msgs.ByName("AttrValue")
	KernelDef = msgs.ByName("KernelDef")
	AttrConstraint = KernelDef.Messages().ByName("AttrConstraint")
	KernelID = msgs.ByName("KernelID")
	RegisterKernelRequest = msgs.ByName("RegisterKernelRequest")
	RegisterKernelResponse = msgs.ByName("RegisterKernelResponse")
	KernelRecord = msgs.ByName("KernelRecord")
	ListKernelsRequest = msgs.ByName("ListKernelsRequest")
	ListKernelsResponse = msgs.ByName("ListKernelsResponse")
	TypeBinding = msgs.ByName("TypeBinding")
	FindKernelRequest = msgs.ByName("FindKernelRequest")
	SupportedDeviceTypesResponse = msgs.ByName("SupportedDeviceTypesResponse")
	BoolResponse = msgs.ByName("BoolResponse")

	KernelRegistryAPI = fd.Services().ByName("KernelRegistryAPI")
}

// NewMessage returns an empty, mutable message of the given type.
func NewMessage(md protoreflect.MessageDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(md)
}

// Field looks up a field by name and panics if the schema lacks it; a
// missing field is a programming error.
func Field(md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	f := md.Fields().ByName(protoreflect.Name(name))
	if f == nil {
		panic(fmt.Sprintf("kernelpb: %s has no field %q", md.FullName(), name))
	}
	return f
}

// GetString reads a string field.
func GetString(m protoreflect.Message, name string) string {
	return m.Get(Field(m.Descriptor(), name)).String()
}

// SetString sets a string field, leaving it unset for "".
func SetString(m protoreflect.Message, name, v string) {
	if v == "" {
		return
	}
	m.Set(Field(m.Descriptor(), name), protoreflect.ValueOfString(v))
}

// GetMessage returns the (possibly empty, read-only) sub-message of a field.
func GetMessage(m protoreflect.Message, name string) protoreflect.Message {
	return m.Get(Field(m.Descriptor(), name)).Message()
}

// SetMessage stores sub as the value of a message field.
func SetMessage(m protoreflect.Message, name string, sub protoreflect.Message) {
	m.Set(Field(m.Descriptor(), name), protoreflect.ValueOfMessage(sub))
}

func fileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(fileName),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{
			dataTypeEnum(),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			message("ListValue",
				repeatedEnum("type", 6, "DataType"),
			),
			message("AttrValue",
				single("list", 1, "ListValue"),
			),
			{
				Name: proto.String("KernelDef"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("op", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalar("device_type", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					repeated("constraint", 3, "KernelDef.AttrConstraint"),
					repeatedScalar("host_memory_arg", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalar("label", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					scalar("priority", 6, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				},
				NestedType: []*descriptorpb.DescriptorProto{
					message("AttrConstraint",
						scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
						single("allowed_values", 2, "AttrValue"),
					),
				},
			},
			message("KernelID",
				scalar("kernel_id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("RegisterKernelRequest",
				scalar("node_name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				single("kernel", 2, "KernelDef"),
			),
			message("RegisterKernelResponse",
				scalar("kernel_id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("KernelRecord",
				scalar("kernel_id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("node_name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				single("kernel", 3, "KernelDef"),
				scalar("registered_at_unix_nano", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			),
			message("ListKernelsRequest",
				scalar("op", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("device_type", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("node_name", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("ListKernelsResponse",
				repeated("kernels", 1, "KernelRecord"),
			),
			message("TypeBinding",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				enumField("type", 2, "DataType"),
			),
			message("FindKernelRequest",
				scalar("op", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("device_type", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("label", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				repeated("attrs", 4, "TypeBinding"),
			),
			message("SupportedDeviceTypesResponse",
				repeatedScalar("device_types", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("BoolResponse",
				scalar("success", 1, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("KernelRegistryAPI"),
				Method: []*descriptorpb.MethodDescriptorProto{
					method("RegisterKernel", "RegisterKernelRequest", "RegisterKernelResponse"),
					method("DeRegisterKernel", "KernelID", "BoolResponse"),
					method("GetKernel", "KernelID", "KernelRecord"),
					method("ListKernels", "ListKernelsRequest", "ListKernelsResponse"),
					method("FindKernel", "FindKernelRequest", "KernelRecord"),
					method("SupportedDeviceTypes", "FindKernelRequest", "SupportedDeviceTypesResponse"),
				},
			},
		},
	}
}

func dataTypeEnum() *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String("DataType")}
	for n := constants.DTInvalid; n <= constants.DTUint64; n++ {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(n.String()),
			Number: proto.Int32(int32(n)),
		})
	}
	return e
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(qualified(in)),
		OutputType: proto.String(qualified(out)),
	}
}

func qualified(name string) string {
	return "." + Package + "." + name
}

func scalar(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeatedScalar(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, typ)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func single(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(qualified(typeName))
	return f
}

func repeated(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := single(name, num, typeName)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func enumField(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	f.TypeName = proto.String(qualified(typeName))
	return f
}

func repeatedEnum(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := enumField(name, num, typeName)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}
