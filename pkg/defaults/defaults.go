package defaults

import "time"

const (
	// GPUNodes is the number of GPU-class nodes the simulated cluster is built with.
	GPUNodes = 4

	// CPUNodes is the number of CPU-class nodes the simulated cluster is built with.
	CPUNodes = 4

	// GPUsPerNode is the number of GPUs owned by every GPU-class node.
	GPUsPerNode = 8

	// TickInterval is the period of the simulation driver.
	TickInterval = time.Second

	// HTTPAPIEndpoint is the endpoint for the metrics and snapshot HTTP server.
	HTTPAPIEndpoint = "0.0.0.0:8080"

	// GRPCAPIEndpoint is the endpoint for the gRPC health server.
	GRPCAPIEndpoint = "0.0.0.0:9090"

	// APIBaseURL is the address the CLI client talks to.
	APIBaseURL = "http://localhost:8080"

	// ClientTimeout bounds a single CLI request including retries.
	ClientTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout = 10 * time.Second

	// ReadTimeout and WriteTimeout are the HTTP server timeouts.
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second

	// ServiceName is reported by the health endpoints.
	ServiceName = "node-simulator"

	// EnvPrefix is the prefix for environment variable configuration.
	EnvPrefix = "PULSE"

	// ConfigurationDir is the system wide configuration directory.
	ConfigurationDir = "/etc/pulse"

	// DataFilePerm is the permissions to use for data files.
	DataFilePerm = 0o644
)
