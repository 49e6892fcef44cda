package config

import (
	"time"

	"pulse-node/pkg/log"
)

// Config represents the pulse configuration.
type Config struct {
	// Logging contains the logging related config.
	Logging log.Config

	// GPUNodes is the number of GPU-class nodes to simulate.
	GPUNodes int
	// CPUNodes is the number of CPU-class nodes to simulate.
	CPUNodes int
	// GPUsPerNode is the number of GPUs on every GPU-class node.
	GPUsPerNode int
	// GPUModels is the rotation of GPU models across GPU nodes.
	GPUModels []string
	// GPUModelsFile is an optional TOML or YAML file extending the built-in GPU models.
	GPUModelsFile string

	// TickInterval is the period of the simulation driver.
	TickInterval time.Duration
	// Seed seeds the simulation's random source. 0 seeds from the clock.
	Seed uint64
	// EnableFaultInjection allows the fail and recover lifecycle actions.
	EnableFaultInjection bool

	// HTTPAPIEndpoint is the endpoint for the HTTP API and metrics.
	HTTPAPIEndpoint string
	// GRPCAPIEndpoint is the endpoint for the gRPC health service.
	GRPCAPIEndpoint string
	// DisableGRPC stops the gRPC health service from running.
	DisableGRPC bool
	// ShutdownTimeout bounds the graceful shutdown of the servers.
	ShutdownTimeout time.Duration

	// APIBaseURL is the simulator address used by the client commands.
	APIBaseURL string
	// ClientTimeout bounds one client request including retries.
	ClientTimeout time.Duration
	// Output is the output format of the client commands.
	Output string
	// HealthGRPCEndpoint is the gRPC health endpoint the health command checks.
	HealthGRPCEndpoint string
}
