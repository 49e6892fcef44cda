package types

import "pulse-node/pkg/models"

// GPUInfo is the JSON view of one GPU's committed readings.
type GPUInfo struct {
	Index             int     `json:"index"`
	UUID              string  `json:"uuid"`
	Model             string  `json:"model"`
	Utilization       float64 `json:"utilization"`
	MemoryUtilization float64 `json:"memory_utilization"`
	MemoryUsedMiB     float64 `json:"memory_used_mib"`
	MemoryTotalMiB    float64 `json:"memory_total_mib"`
	Temperature       float64 `json:"temperature"`
	PowerUsage        float64 `json:"power_usage"`
	SMClock           float64 `json:"sm_clock"`
	MemoryClock       float64 `json:"memory_clock"`
	ECCErrors         uint64  `json:"ecc_errors"`
	InterconnectTx    float64 `json:"interconnect_tx_bytes"`
	InterconnectRx    float64 `json:"interconnect_rx_bytes"`
}

// NewGPUInfo renders a GPU with readings rounded to two decimals.
func NewGPUInfo(gpu models.GPU) GPUInfo {
	return GPUInfo{
		Index:             gpu.Index,
		UUID:              gpu.UUID,
		Model:             gpu.Spec.Model,
		Utilization:       round2(gpu.Utilization),
		MemoryUtilization: round2(gpu.MemoryUtilization),
		MemoryUsedMiB:     round2(gpu.MemoryUsed),
		MemoryTotalMiB:    gpu.Spec.MemoryMiB,
		Temperature:       round2(gpu.Temperature),
		PowerUsage:        round2(gpu.PowerUsage),
		SMClock:           round2(gpu.SMClock),
		MemoryClock:       round2(gpu.MemClock),
		ECCErrors:         gpu.ECCErrors,
		InterconnectTx:    gpu.InterconnectTx,
		InterconnectRx:    gpu.InterconnectRx,
	}
}

// GPUModelInfo is the JSON view of a GPU model table entry.
type GPUModelInfo struct {
	Model        string  `json:"model"`
	MemoryMiB    float64 `json:"memory_mib"`
	MaxPowerW    float64 `json:"max_power_w"`
	MaxTempC     float64 `json:"max_temp_c"`
	BaseSMClock  float64 `json:"base_sm_clock_mhz"`
	BaseMemClock float64 `json:"base_mem_clock_mhz"`
}

func NewGPUModelInfo(spec models.GPUSpec) GPUModelInfo {
	return GPUModelInfo(spec)
}
