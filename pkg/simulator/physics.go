package simulator

import (
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"
)

const (
	cpuBaseLoadMin    = 20.0
	cpuBaseLoadSpread = 30.0
	cpuNoiseStdDev    = 10.0

	memUtilMin    = 30.0
	memUtilSpread = 40.0

	// networkMaxDelta is the most a node's rx or tx counter grows in one tick.
	networkMaxDelta = 100 * models.MiB

	gpuActiveProbability = 0.7
	gpuActiveMean        = 60.0
	gpuActiveStdDev      = 20.0
	gpuIdleMax           = 20.0

	gpuMemUtilFactor = 0.8
	gpuMemUtilJitter = 20.0

	loadTempRiseC = 45.0
	tempSmoothing = 0.9

	powerIdleFraction = 0.1

	throttleTempC  = 80.0
	throttleFactor = 0.9

	eccErrorProbability = 0.001

	// interconnectBytesPerPercent scales utilization into interconnect bytes per tick.
	interconnectBytesPerPercent = models.MiB
)

// StepNode advances an available node by one tick.
func StepNode(state *models.NodeState, rnd ports.Random) {
	baseLoad := cpuBaseLoadMin + rnd.Float64()*cpuBaseLoadSpread
	state.CPUUtilization = clamp(baseLoad+rnd.NormFloat64()*cpuNoiseStdDev, 0, 100)

	state.MemoryUtilization = memUtilMin + rnd.Float64()*memUtilSpread
	state.MemoryUsed = state.MemoryTotal * state.MemoryUtilization / 100

	state.NetworkRx += rnd.Float64() * networkMaxDelta
	state.NetworkTx += rnd.Float64() * networkMaxDelta

	if state.Class != models.NodeClassGPU {
		return
	}

	for i := range state.GPUs {
		StepGPU(&state.GPUs[i], rnd)
	}
}

// StepGPU advances one GPU by one tick.
func StepGPU(gpu *models.GPU, rnd ports.Random) {
	spec := gpu.Spec

	if rnd.Float64() < gpuActiveProbability {
		gpu.Utilization = clamp(gpuActiveMean+rnd.NormFloat64()*gpuActiveStdDev, 0, 100)
	} else {
		gpu.Utilization = rnd.Float64() * gpuIdleMax
	}

	load := gpu.Utilization / 100

	gpu.MemoryUtilization = clamp(gpu.Utilization*gpuMemUtilFactor+rnd.Float64()*gpuMemUtilJitter, 0, 100)
	gpu.MemoryUsed = spec.MemoryMiB * gpu.MemoryUtilization / 100

	// Temperature follows its load target with exponential smoothing.
	target := models.IdleTempC + load*loadTempRiseC
	gpu.Temperature = clamp(tempSmoothing*gpu.Temperature+(1-tempSmoothing)*target, 0, spec.MaxTempC)

	gpu.PowerUsage = spec.MaxPowerW * (powerIdleFraction + (1-powerIdleFraction)*load)

	factor := 1.0
	if gpu.Temperature > throttleTempC {
		factor = throttleFactor
	}

	gpu.SMClock = spec.BaseSMClock * factor
	gpu.MemClock = spec.BaseMemClock * factor

	if rnd.Float64() < eccErrorProbability {
		gpu.ECCErrors++
	}

	traffic := gpu.Utilization * interconnectBytesPerPercent
	gpu.InterconnectTx += traffic
	gpu.InterconnectRx += traffic
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}
