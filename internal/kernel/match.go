package kernel

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
)

// Record is a registered kernel as the control plane knows it.
type Record struct {
	ID           string
	NodeName     string
	Def          KernelDef
	RegisteredAt time.Time
}

// Query asks for the kernel implementing Op on DeviceType. Attrs binds
// each constrained attr to a concrete type.
type Query struct {
	Op         string
	DeviceType constants.DeviceType
	Label      string
	Attrs      map[string]constants.DataType
}

// AttrsMatch reports whether every constraint of d admits the type bound in
// attrs. A constraint on an attr that attrs does not bind is an error.
func AttrsMatch(d KernelDef, attrs map[string]constants.DataType) (bool, error) {
	for _, c := range d.Constraints {
		dt, ok := attrs[c.Name]
		if !ok {
			return false, fmt.Errorf("%w: kernel for op %q on %s constrains attr %q, which is not bound",
				ErrInvalidArgument, d.Op, d.DeviceType, c.Name)
		}
		if !c.Allows(dt) {
			return false, nil
		}
	}
	return true, nil
}

// Matches reports whether d satisfies q.
func (q Query) Matches(d KernelDef) (bool, error) {
	if d.Op != q.Op || d.DeviceType != q.DeviceType || d.Label != q.Label {
		return false, nil
	}
	return AttrsMatch(d, q.Attrs)
}

// SelectKernel picks the highest-priority record matching q. Two matches
// sharing the top priority are ambiguous.
func SelectKernel(records []Record, q Query) (Record, error) {
	var (
		best  Record
		found bool
		tied  bool
	)
	for _, r := range records {
		ok, err := q.Matches(r.Def)
		if err != nil {
			return Record{}, err
		}
		if !ok {
			continue
		}
		switch {
		case !found || r.Def.Priority > best.Def.Priority:
			best, found, tied = r, true, false
		case r.Def.Priority == best.Def.Priority:
			tied = true
		}
	}
	if !found {
		return Record{}, fmt.Errorf("%w: no kernel for op %q on %s with label %q matches %v",
			ErrNotFound, q.Op, q.DeviceType, q.Label, q.Attrs)
	}
	if tied {
		return Record{}, fmt.Errorf("%w: several kernels for op %q on %s share priority %d",
			ErrAmbiguousMatch, q.Op, q.DeviceType, best.Def.Priority)
	}
	return best, nil
}

// SupportedDeviceTypes lists the device types with an unlabelled kernel for
// op whose constraints admit attrs, best kernel priority first and then by
// name.
func SupportedDeviceTypes(records []Record, op string, attrs map[string]constants.DataType) ([]constants.DeviceType, error) {
	best := make(map[constants.DeviceType]int32)
	for _, r := range records {
		if r.Def.Op != op || r.Def.Label != "" {
			continue
		}
		ok, err := AttrsMatch(r.Def, attrs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if p, seen := best[r.Def.DeviceType]; !seen || r.Def.Priority > p {
			best[r.Def.DeviceType] = r.Def.Priority
		}
	}

	devices := make([]constants.DeviceType, 0, len(best))
	for dev := range best {
		devices = append(devices, dev)
	}
	slices.SortFunc(devices, func(a, b constants.DeviceType) int {
		if c := cmp.Compare(best[b], best[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return devices, nil
}
