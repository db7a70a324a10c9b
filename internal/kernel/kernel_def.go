// Package kernel describes how a kernel registers itself: the op it
// implements, the device it runs on, the types its attrs may take and the
// arguments that stay in host memory.
package kernel

import (
	"errors"
	"slices"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
)

var (
	// ErrInvalidArgument marks a malformed descriptor, query or request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means no kernel matched or no kernel has the given ID.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means an equal descriptor is already registered.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAmbiguousMatch means several kernels share the top priority.
	ErrAmbiguousMatch = errors.New("ambiguous kernel match")
)

// AttrConstraint restricts the attr Name to the listed types, in the order
// they were declared.
type AttrConstraint struct {
	Name         string
	AllowedTypes []constants.DataType
}

// Allows reports whether dt is one of the allowed types.
func (c AttrConstraint) Allows(dt constants.DataType) bool {
	return slices.Contains(c.AllowedTypes, dt)
}

// KernelDef is a finalized kernel registration. Values returned by
// KernelDefBuilder.Build share no memory with the builder and may be read
// concurrently.
type KernelDef struct {
	Op             string
	DeviceType     constants.DeviceType
	Constraints    []AttrConstraint
	HostMemoryArgs []string
	Label          string
	Priority       int32
}

// Clone returns a deep copy of d.
func (d KernelDef) Clone() KernelDef {
	out := d
	out.Constraints = nil
	if d.Constraints != nil {
		out.Constraints = make([]AttrConstraint, len(d.Constraints))
		for i, c := range d.Constraints {
			out.Constraints[i] = AttrConstraint{
				Name:         c.Name,
				AllowedTypes: slices.Clone(c.AllowedTypes),
			}
		}
	}
	out.HostMemoryArgs = slices.Clone(d.HostMemoryArgs)
	return out
}

// Equal compares two descriptors field by field; order matters everywhere.
func (d KernelDef) Equal(o KernelDef) bool {
	if d.Op != o.Op || d.DeviceType != o.DeviceType || d.Label != o.Label || d.Priority != o.Priority {
		return false
	}
	if !slices.Equal(d.HostMemoryArgs, o.HostMemoryArgs) {
		return false
	}
	return slices.EqualFunc(d.Constraints, o.Constraints, func(a, b AttrConstraint) bool {
		return a.Name == b.Name && slices.Equal(a.AllowedTypes, b.AllowedTypes)
	})
}

// Constraint returns the constraint on attr, if any.
func (d KernelDef) Constraint(attr string) (AttrConstraint, bool) {
	i := slices.IndexFunc(d.Constraints, func(c AttrConstraint) bool { return c.Name == attr })
	if i < 0 {
		return AttrConstraint{}, false
	}
	return d.Constraints[i], true
}

// IsHostMemoryArg reports whether arg must reside in host memory.
func (d KernelDef) IsHostMemoryArg(arg string) bool {
	return slices.Contains(d.HostMemoryArgs, arg)
}

// String renders d in the protobuf text format.
func (d KernelDef) String() string {
	s, err := MarshalText(d)
	if err != nil {
		return "<invalid KernelDef: " + err.Error() + ">"
	}
	return s
}
