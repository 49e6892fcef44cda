package models

import (
	"fmt"
	"sort"

	perrors "pulse-node/pkg/errors"

	"github.com/google/uuid"
)

const (
	GPUModelA100 = "NVIDIA-A100-80GB"
	GPUModelH100 = "NVIDIA-H100-80GB"
)

// gpuNamespace scopes the name based UUIDs handed out to simulated GPUs.
var gpuNamespace = uuid.MustParse("5b1f7c1e-3a55-4c64-9a8e-6f3f1d2a9c10")

const (
	// IdleTempC and IdleTempSpreadC give the range new GPUs start in. Every model's
	// temperature ceiling must be at least the top of that range.
	IdleTempC       = 35.0
	IdleTempSpreadC = 5.0
)

// GPUSpec holds the static specification of a GPU model. It is never mutated once loaded.
type GPUSpec struct {
	Model        string  `json:"model" toml:"model" yaml:"model"`
	MemoryMiB    float64 `json:"memory_mib" toml:"memory_mib" yaml:"memory_mib"`
	MaxPowerW    float64 `json:"max_power_w" toml:"max_power_w" yaml:"max_power_w"`
	MaxTempC     float64 `json:"max_temp_c" toml:"max_temp_c" yaml:"max_temp_c"`
	BaseSMClock  float64 `json:"base_sm_clock_mhz" toml:"base_sm_clock_mhz" yaml:"base_sm_clock_mhz"`
	BaseMemClock float64 `json:"base_mem_clock_mhz" toml:"base_mem_clock_mhz" yaml:"base_mem_clock_mhz"`
}

// Validate checks that every ceiling and base value is usable by the physical model.
func (s GPUSpec) Validate() error {
	switch {
	case s.Model == "":
		return fmt.Errorf("%w: model id is required", perrors.ErrInvalidModelSpec)
	case s.MemoryMiB <= 0:
		return fmt.Errorf("%w: %s memory_mib must be positive", perrors.ErrInvalidModelSpec, s.Model)
	case s.MaxPowerW <= 0:
		return fmt.Errorf("%w: %s max_power_w must be positive", perrors.ErrInvalidModelSpec, s.Model)
	case s.MaxTempC < IdleTempC+IdleTempSpreadC:
		return fmt.Errorf("%w: %s max_temp_c must be at least %.0f, got %g",
			perrors.ErrInvalidModelSpec, s.Model, IdleTempC+IdleTempSpreadC, s.MaxTempC)
	case s.BaseSMClock <= 0 || s.BaseMemClock <= 0:
		return fmt.Errorf("%w: %s base clocks must be positive", perrors.ErrInvalidModelSpec, s.Model)
	}

	return nil
}

// BuiltinSpecs returns the GPU models every table starts with.
func BuiltinSpecs() []GPUSpec {
	return []GPUSpec{
		{
			Model:        GPUModelA100,
			MemoryMiB:    81920,
			MaxPowerW:    400,
			MaxTempC:     83,
			BaseSMClock:  1410,
			BaseMemClock: 1593,
		},
		{
			Model:        GPUModelH100,
			MemoryMiB:    81920,
			MaxPowerW:    700,
			MaxTempC:     83,
			BaseSMClock:  1980,
			BaseMemClock: 2619,
		},
	}
}

// ModelTable maps a GPU model identifier to its spec.
type ModelTable struct {
	specs map[string]GPUSpec
}

// NewModelTable builds a table from the supplied specs. A later spec with the same model id
// replaces an earlier one.
func NewModelTable(specs ...GPUSpec) (*ModelTable, error) {
	table := &ModelTable{specs: make(map[string]GPUSpec, len(specs))}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		table.specs[spec.Model] = spec
	}

	return table, nil
}

// DefaultModelTable returns a table holding only the built-in models.
func DefaultModelTable() *ModelTable {
	table, err := NewModelTable(BuiltinSpecs()...)
	if err != nil {
		panic(fmt.Sprintf("built-in gpu specs are invalid: %v", err))
	}

	return table
}

// Lookup returns the spec registered for model.
func (t *ModelTable) Lookup(model string) (GPUSpec, error) {
	spec, ok := t.specs[model]
	if !ok {
		return GPUSpec{}, perrors.NewUnknownModel(model)
	}

	return spec, nil
}

// Models returns every registered spec sorted by model id.
func (t *ModelTable) Models() []GPUSpec {
	specs := make([]GPUSpec, 0, len(t.specs))
	for _, spec := range t.specs {
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Model < specs[j].Model })

	return specs
}

// Len returns the number of registered models.
func (t *ModelTable) Len() int {
	return len(t.specs)
}

// GPU holds the simulated readings of a single GPU. It is owned by exactly one node and is
// only ever touched under that node's lock.
type GPU struct {
	Index int
	UUID  string
	Spec  GPUSpec

	Utilization       float64
	MemoryUtilization float64
	// MemoryUsed is in MiB.
	MemoryUsed  float64
	Temperature float64
	PowerUsage  float64
	SMClock     float64
	MemClock    float64

	// Cumulative since process start.
	ECCErrors      uint64
	InterconnectTx float64
	InterconnectRx float64
}

// NewGPU returns a GPU at base clocks with the given starting temperature.
func NewGPU(nodeID string, index int, spec GPUSpec, temperature float64) GPU {
	return GPU{
		Index:       index,
		UUID:        GPUUUID(nodeID, index),
		Spec:        spec,
		Temperature: temperature,
		SMClock:     spec.BaseSMClock,
		MemClock:    spec.BaseMemClock,
	}
}

// GPUUUID derives a stable identifier for the GPU at index on the node, so the same
// topology reports the same UUIDs across restarts.
func GPUUUID(nodeID string, index int) string {
	id := uuid.NewSHA1(gpuNamespace, []byte(fmt.Sprintf("%s/%d", nodeID, index)))

	return "GPU-" + id.String()
}
