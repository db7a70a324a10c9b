// Package manifest reads the YAML file in which an agent declares the
// kernels it provides.
//
//	kernels:
//	  - op: MatMul
//	    devices: [CPU, GPU]
//	    constraints:
//	      - name: T
//	        types: [DT_FLOAT, float64]
//	    host_memory: [shape]
//	    label: ""
//	    priority: 0
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"gopkg.in/yaml.v3"
)

type Manifest struct {
	Kernels []KernelSpec `yaml:"kernels"`
}

type KernelSpec struct {
	Op          string           `yaml:"op"`
	Devices     []string         `yaml:"devices"`
	Constraints []ConstraintSpec `yaml:"constraints"`
	HostMemory  []string         `yaml:"host_memory"`
	Label       string           `yaml:"label"`
	Priority    int32            `yaml:"priority"`
}

type ConstraintSpec struct {
	Name  string   `yaml:"name"`
	Types []string `yaml:"types"`
}

// Load reads and decodes the manifest at path.
func Load(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(b)
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(b []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// KernelDefs expands every (kernel, device) pair into a KernelDef, in
// manifest order.
func (m Manifest) KernelDefs() ([]kernel.KernelDef, error) {
	var defs []kernel.KernelDef
	for i, spec := range m.Kernels {
		if len(spec.Devices) == 0 {
			return nil, fmt.Errorf("kernel %d (%s): %w: no devices listed", i, spec.Op, kernel.ErrInvalidArgument)
		}
		for _, device := range spec.Devices {
			def, err := spec.build(constants.DeviceType(device))
			if err != nil {
				return nil, fmt.Errorf("kernel %d (%s): %w", i, spec.Op, err)
			}
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func (s KernelSpec) build(device constants.DeviceType) (kernel.KernelDef, error) {
	b, err := kernel.NewKernelDefBuilder(s.Op)
	if err != nil {
		return kernel.KernelDef{}, err
	}
	b.Device(device).Label(s.Label).Priority(s.Priority)

	for _, c := range s.Constraints {
		types := make([]constants.DataType, 0, len(c.Types))
		for _, name := range c.Types {
			dt, err := constants.ParseDataType(name)
			if err != nil {
				return kernel.KernelDef{}, fmt.Errorf("%w: constraint %q: %v", kernel.ErrInvalidArgument, c.Name, err)
			}
			types = append(types, dt)
		}
		b.TypeConstraint(c.Name, types...)
	}
	for _, arg := range s.HostMemory {
		b.HostMemory(arg)
	}
	return b.Build()
}
