package utils

import (
	"context"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/shirou/gopsutil/v4/cpu"
)

// Device is one compute device found on the host.
type Device struct {
	Type   constants.DeviceType
	Vendor string
	Model  string
	// Cores is the logical core count for CPUs and 0 otherwise.
	Cores int
}

// Detector finds the compute devices of the local host. The zero value is
// not usable; call NewDetector.
type Detector struct {
	goos   string
	goarch string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
	cpu    func(ctx context.Context) (model string, cores int, err error)
}

// NewDetector returns a Detector that inspects the running host.
func NewDetector() *Detector {
	return &Detector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		run:    runCommand,
		cpu:    hostCPU,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func hostCPU(ctx context.Context) (string, int, error) {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return "", 0, err
	}
	model := ""
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		model = strings.TrimSpace(infos[0].ModelName)
	}
	return model, cores, nil
}

// Detect lists the CPU followed by any GPUs the vendor tools report. Missing
// tools are not errors; the host just has no such device.
func (d *Detector) Detect(ctx context.Context) ([]Device, error) {
	model, cores, err := d.cpu(ctx)
	if err != nil {
		return nil, err
	}
	devices := []Device{{
		Type:   constants.DeviceCPU,
		Vendor: vendorFromName(model),
		Model:  model,
		Cores:  cores,
	}}

	switch d.goos {
	case "linux", "windows":
		if out, err := d.run(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader"); err == nil {
			devices = append(devices, parseNVIDIASMI(out)...)
		}
		if out, err := d.run(ctx, "rocm-smi", "--showproductname"); err == nil {
			devices = append(devices, parseROCmSMI(out)...)
		}
	case "darwin":
		if d.goarch == "arm64" {
			devices = append(devices, Device{Type: constants.DeviceGPU, Vendor: "apple", Model: "Apple Integrated GPU"})
		}
	}
	return devices, nil
}

// DeviceTypes returns the distinct device types of devices, sorted.
func DeviceTypes(devices []Device) []constants.DeviceType {
	types := make([]constants.DeviceType, 0, len(devices))
	for _, dev := range devices {
		if !slices.Contains(types, dev.Type) {
			types = append(types, dev.Type)
		}
	}
	slices.Sort(types)
	return types
}

// parseNVIDIASMI parses "name" CSV rows from nvidia-smi, one GPU per line.
func parseNVIDIASMI(out []byte) []Device {
	var gpus []Device
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(strings.Split(line, ",")[0])
		if name == "" {
			continue
		}
		gpus = append(gpus, Device{Type: constants.DeviceGPU, Vendor: "nvidia", Model: name})
	}
	return gpus
}

// parseROCmSMI picks the "Card series" lines out of rocm-smi
// --showproductname, e.g. "GPU[0] : Card series: Radeon RX 7900 XTX".
func parseROCmSMI(out []byte) []Device {
	var gpus []Device
	for _, line := range strings.Split(string(out), "\n") {
		_, series, ok := strings.Cut(line, "Card series:")
		if !ok {
			continue
		}
		series = strings.TrimSpace(series)
		if series == "" {
			continue
		}
		gpus = append(gpus, Device{Type: constants.DeviceGPU, Vendor: "amd", Model: series})
	}
	return gpus
}

// vendorFromName guesses the vendor from a device model string.
func vendorFromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "intel"):
		return "intel"
	case strings.Contains(lower, "amd"), strings.Contains(lower, "ryzen"), strings.Contains(lower, "epyc"):
		return "amd"
	case strings.Contains(lower, "apple"):
		return "apple"
	case strings.Contains(lower, "nvidia"):
		return "nvidia"
	default:
		return ""
	}
}
