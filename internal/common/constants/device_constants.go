package constants

// DeviceType names the device class a kernel runs on. Values are upper-case
// tags; anything non-empty is accepted so custom accelerators can register.
type DeviceType string

const (
	DeviceCPU DeviceType = "CPU"
	DeviceGPU DeviceType = "GPU"
	DeviceTPU DeviceType = "TPU"
	DeviceNPU DeviceType = "NPU"
)

