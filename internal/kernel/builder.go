package kernel

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
)

// KernelDefBuilder accumulates a kernel registration through chained calls:
//
//	b, err := kernel.NewKernelDefBuilder("MatMul")
//	...
//	def, err := b.Device(constants.DeviceGPU).
//		TypeConstraint("T", constants.DTFloat, constants.DTHalf).
//		HostMemory("shape").
//		Build()
//
// The first invalid call records an error, visible through Err right away;
// every later call is a no-op and Build returns that error.
type KernelDefBuilder struct {
	def KernelDef
	err error
}

// NewKernelDefBuilder starts a registration for op.
func NewKernelDefBuilder(op string) (*KernelDefBuilder, error) {
	if strings.TrimSpace(op) == "" {
		return nil, fmt.Errorf("%w: op name cannot be empty", ErrInvalidArgument)
	}
	return &KernelDefBuilder{def: KernelDef{Op: op}}, nil
}

// Device sets the device type. A second call replaces the first.
func (b *KernelDefBuilder) Device(deviceType constants.DeviceType) *KernelDefBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(string(deviceType)) == "" {
		return b.fail("device type cannot be empty")
	}
	b.def.DeviceType = deviceType
	return b
}

// TypeConstraint restricts attr to the allowed types, kept in the order
// given. Pass one type for a single-type constraint.
func (b *KernelDefBuilder) TypeConstraint(attr string, allowed ...constants.DataType) *KernelDefBuilder {
	if b.err != nil {
		return b
	}
	if attr == "" {
		return b.fail("constraint attr name cannot be empty")
	}
	if len(allowed) == 0 {
		return b.fail("constraint on %q needs at least one type", attr)
	}
	if _, dup := b.def.Constraint(attr); dup {
		return b.fail("duplicate constraint on %q", attr)
	}
	for i, dt := range allowed {
		if !dt.IsValid() {
			return b.fail("constraint on %q: %v is not a valid type", attr, dt)
		}
		if slices.Contains(allowed[:i], dt) {
			return b.fail("constraint on %q lists %v twice", attr, dt)
		}
	}
	b.def.Constraints = append(b.def.Constraints, AttrConstraint{
		Name:         attr,
		AllowedTypes: slices.Clone(allowed),
	})
	return b
}

// TypeConstraintOf restricts attr to the DataType of the Go type T.
func TypeConstraintOf[T any](b *KernelDefBuilder, attr string) *KernelDefBuilder {
	return b.TypeConstraint(attr, constants.DataTypeOf[T]())
}

// HostMemory marks arg as living in host memory. Order of calls is kept.
func (b *KernelDefBuilder) HostMemory(arg string) *KernelDefBuilder {
	if b.err != nil {
		return b
	}
	if arg == "" {
		return b.fail("host memory arg cannot be empty")
	}
	if b.def.IsHostMemoryArg(arg) {
		return b.fail("duplicate host memory arg %q", arg)
	}
	b.def.HostMemoryArgs = append(b.def.HostMemoryArgs, arg)
	return b
}

// Label sets the kernel label; only lookups asking for the same label match.
func (b *KernelDefBuilder) Label(label string) *KernelDefBuilder {
	if b.err != nil {
		return b
	}
	b.def.Label = label
	return b
}

// Priority sets the priority used to choose among matching kernels.
func (b *KernelDefBuilder) Priority(priority int32) *KernelDefBuilder {
	if b.err != nil {
		return b
	}
	b.def.Priority = priority
	return b
}

// Err returns the first error recorded by the builder.
func (b *KernelDefBuilder) Err() error {
	return b.err
}

// Build returns the accumulated descriptor. The result is a copy: further
// calls on the builder do not affect it, and Build may be called again.
func (b *KernelDefBuilder) Build() (KernelDef, error) {
	if b.err != nil {
		return KernelDef{}, b.err
	}
	if b.def.DeviceType == "" {
		return KernelDef{}, fmt.Errorf("%w: kernel for op %q has no device type", ErrInvalidArgument, b.def.Op)
	}
	return b.def.Clone(), nil
}

func (b *KernelDefBuilder) fail(format string, args ...any) *KernelDefBuilder {
	b.err = fmt.Errorf("%w: op %q: %s", ErrInvalidArgument, b.def.Op, fmt.Sprintf(format, args...))
	return b
}
