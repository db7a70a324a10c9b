package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/store"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
)

const kernelPrefix = "kernel:"

// writeMu serializes registry writes so the duplicate and existence checks
// see the state they act on.
var writeMu sync.Mutex

// ListFilter narrows ListKernels; empty fields match everything.
type ListFilter struct {
	Op         string
	DeviceType constants.DeviceType
	NodeName   string
}

func (f ListFilter) matches(r kernel.Record) bool {
	return (f.Op == "" || r.Def.Op == f.Op) &&
		(f.DeviceType == "" || r.Def.DeviceType == f.DeviceType) &&
		(f.NodeName == "" || r.NodeName == f.NodeName)
}

// RegisterKernel validates def and stores it under a fresh ID. Registering a
// descriptor equal to an existing one fails with kernel.ErrAlreadyExists.
func RegisterKernel(s *store.Store, nodeName string, def kernel.KernelDef) (string, error) {
	if err := kernel.Validate(def); err != nil {
		return "", err
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	existing, err := ListKernels(s, ListFilter{Op: def.Op, DeviceType: def.DeviceType})
	if err != nil {
		return "", err
	}
	for _, r := range existing {
		if r.Def.Equal(def) {
			return "", fmt.Errorf("%w: kernel for op %q on %s is registered as %s",
				kernel.ErrAlreadyExists, def.Op, def.DeviceType, r.ID)
		}
	}

	kernelID := uuid.New().String()
	if err := putKernel(s, kernel.Record{
		ID:           kernelID,
		NodeName:     nodeName,
		Def:          def,
		RegisteredAt: time.Now(),
	}); err != nil {
		return "", err
	}
	return kernelID, nil
}

// DeRegisterKernel removes a kernel from the store.
func DeRegisterKernel(s *store.Store, kernelID string) error {
	if kernelID == "" {
		return fmt.Errorf("%w: kernelID cannot be empty", kernel.ErrInvalidArgument)
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	if !s.Has(kernelPrefix + kernelID) {
		return fmt.Errorf("%w: kernel %q", kernel.ErrNotFound, kernelID)
	}
	return s.Delete(kernelPrefix + kernelID)
}

// GetKernelByID loads a kernel by ID.
// Returns (zero Record, false, nil) if the kernel is not found.
func GetKernelByID(s *store.Store, kernelID string) (kernel.Record, bool, error) {
	if kernelID == "" {
		return kernel.Record{}, false, fmt.Errorf("%w: kernelID cannot be empty", kernel.ErrInvalidArgument)
	}

	raw, ok := s.Get(kernelPrefix + kernelID)
	if !ok {
		return kernel.Record{}, false, nil
	}
	r, err := decodeKernel(raw)
	if err != nil {
		return kernel.Record{}, false, err
	}
	return r, true, nil
}

// ListKernels returns the registered kernels accepted by filter, ordered by key.
func ListKernels(s *store.Store, filter ListFilter) ([]kernel.Record, error) {
	keys := s.KeysWithPrefix(kernelPrefix)
	records := make([]kernel.Record, 0, len(keys))

	for _, k := range keys {
		raw, ok := s.Get(k)
		if !ok {
			continue
		}
		r, err := decodeKernel(raw)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: %w", k, err)
		}
		if filter.matches(r) {
			records = append(records, r)
		}
	}
	return records, nil
}

// FindKernel resolves q to a single registered kernel.
func FindKernel(s *store.Store, q kernel.Query) (kernel.Record, error) {
	if q.Op == "" || q.DeviceType == "" {
		return kernel.Record{}, fmt.Errorf("%w: op and device type are required", kernel.ErrInvalidArgument)
	}
	candidates, err := ListKernels(s, ListFilter{Op: q.Op, DeviceType: q.DeviceType})
	if err != nil {
		return kernel.Record{}, err
	}
	return kernel.SelectKernel(candidates, q)
}

// SupportedDeviceTypes lists the device types able to run op with attrs.
func SupportedDeviceTypes(s *store.Store, op string, attrs map[string]constants.DataType) ([]constants.DeviceType, error) {
	if op == "" {
		return nil, fmt.Errorf("%w: op is required", kernel.ErrInvalidArgument)
	}
	candidates, err := ListKernels(s, ListFilter{Op: op})
	if err != nil {
		return nil, err
	}
	return kernel.SupportedDeviceTypes(candidates, op, attrs)
}

func putKernel(s *store.Store, r kernel.Record) error {
	def, err := kernel.Marshal(r.Def)
	if err != nil {
		return err
	}
	b, err := json.Marshal(store.KernelInfo{
		ID:           r.ID,
		NodeName:     r.NodeName,
		Def:          def,
		RegisteredAt: r.RegisteredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal kernel info: %w", err)
	}
	return s.Put(kernelPrefix+r.ID, b)
}

func decodeKernel(raw []byte) (kernel.Record, error) {
	var info store.KernelInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return kernel.Record{}, fmt.Errorf("unmarshal kernel info: %w", err)
	}
	if info.ID == "" {
		return kernel.Record{}, errors.New("kernel info has no ID")
	}
	def, err := kernel.Unmarshal(info.Def)
	if err != nil {
		return kernel.Record{}, err
	}
	return kernel.Record{
		ID:           info.ID,
		NodeName:     info.NodeName,
		Def:          def,
		RegisteredAt: info.RegisteredAt,
	}, nil
}
