package agent

import (
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/kennethnrk/edgernetes-kernels/internal/agent/utils"
	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
)

// Agent is a node that publishes its kernels to the control-plane.
type Agent struct {
	Name    string
	Devices []utils.Device
	Kernels []kernel.KernelDef
	// KernelIDs holds the ids assigned by the control-plane, parallel to
	// Kernels. Empty until registration.
	KernelIDs []string
}

// DefaultName returns "<hostname>-<random>".
func DefaultName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "agent"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}

// New builds an agent named name. An empty name falls back to DefaultName.
// Unless allDevices is set, kernels for device types absent from devices
// are dropped.
func New(name string, devices []utils.Device, defs []kernel.KernelDef, allDevices bool) *Agent {
	if name == "" {
		name = DefaultName()
	}
	a := &Agent{Name: name, Devices: devices}
	types := utils.DeviceTypes(devices)
	for _, def := range defs {
		if allDevices || slices.Contains(types, def.DeviceType) {
			a.Kernels = append(a.Kernels, def)
		}
	}
	return a
}

// DeviceTypes returns the distinct device types of the agent's devices.
func (a *Agent) DeviceTypes() []constants.DeviceType {
	return utils.DeviceTypes(a.Devices)
}
