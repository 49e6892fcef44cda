package flags

import (
	"fmt"

	"pulse-node/internal/config"
	"pulse-node/pkg/defaults"
	"pulse-node/pkg/models"

	"github.com/spf13/cobra"
)

const (
	gpuNodesFlag             = "gpu-nodes"
	cpuNodesFlag             = "cpu-nodes"
	gpusPerNodeFlag          = "gpus-per-node"
	gpuModelsFlag            = "gpu-models"
	gpuModelsFileFlag        = "gpu-models-file"
	tickIntervalFlag         = "tick-interval"
	seedFlag                 = "seed"
	enableFaultInjectionFlag = "enable-fault-injection"
	httpEndpointFlag         = "http-endpoint"
	grpcEndpointFlag         = "grpc-endpoint"
	disableGRPCFlag          = "disable-grpc"
	shutdownTimeoutFlag      = "shutdown-timeout"
	apiURLFlag               = "api-url"
	clientTimeoutFlag        = "timeout"
	outputFlag               = "output"

	OutputTable = "table"
	OutputJSON  = "json"
)

// AddClusterFlagsToCommand will add the cluster topology flags to the supplied command.
func AddClusterFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().IntVar(&cfg.GPUNodes,
		gpuNodesFlag,
		defaults.GPUNodes,
		"The number of GPU nodes to simulate.")

	cmd.Flags().IntVar(&cfg.CPUNodes,
		cpuNodesFlag,
		defaults.CPUNodes,
		"The number of CPU nodes to simulate.")

	cmd.Flags().IntVar(&cfg.GPUsPerNode,
		gpusPerNodeFlag,
		defaults.GPUsPerNode,
		"The number of GPUs on every GPU node.")

	cmd.Flags().StringSliceVar(&cfg.GPUModels,
		gpuModelsFlag,
		[]string{models.GPUModelA100, models.GPUModelH100},
		"The GPU models to rotate across GPU nodes.")

	cmd.Flags().StringVar(&cfg.GPUModelsFile,
		gpuModelsFileFlag,
		"",
		"A TOML or YAML file with additional GPU models.")
}

// AddSimulationFlagsToCommand will add the simulation driver flags to the supplied command.
func AddSimulationFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().DurationVar(&cfg.TickInterval,
		tickIntervalFlag,
		defaults.TickInterval,
		"The period between simulation ticks.")

	cmd.Flags().Uint64Var(&cfg.Seed,
		seedFlag,
		0,
		"Seed for the simulation's random source. 0 seeds from the clock.")

	cmd.Flags().BoolVar(&cfg.EnableFaultInjection,
		enableFaultInjectionFlag,
		false,
		"Allow the fail and recover actions that take nodes down and back up.")
}

// AddServerFlagsToCommand will add the HTTP and gRPC server flags to the supplied command.
func AddServerFlagsToCommand(cmd *cobra.Command, cfg *config.Config) error {
	cmd.Flags().StringVar(&cfg.HTTPAPIEndpoint,
		httpEndpointFlag,
		defaults.HTTPAPIEndpoint,
		"The endpoint for the HTTP API and metrics to listen on.")

	cmd.Flags().StringVar(&cfg.GRPCAPIEndpoint,
		grpcEndpointFlag,
		defaults.GRPCAPIEndpoint,
		"The endpoint for the gRPC health service to listen on.")

	cmd.Flags().BoolVar(&cfg.DisableGRPC,
		disableGRPCFlag,
		false,
		"Set to true to stop the gRPC health service running")

	cmd.Flags().DurationVar(&cfg.ShutdownTimeout,
		shutdownTimeoutFlag,
		defaults.ShutdownTimeout,
		"How long to wait for the servers to drain on shutdown.")

	if err := cmd.Flags().MarkHidden(shutdownTimeoutFlag); err != nil {
		return fmt.Errorf("setting %s as hidden: %w", shutdownTimeoutFlag, err)
	}

	return nil
}

// AddClientFlagsToCommand will add the API client flags to the supplied command. They are
// persistent so every client subcommand shares them.
func AddClientFlagsToCommand(cmd *cobra.Command, cfg *config.Config) {
	cmd.PersistentFlags().StringVar(&cfg.APIBaseURL,
		apiURLFlag,
		defaults.APIBaseURL,
		"The address of the simulator HTTP API.")

	cmd.PersistentFlags().DurationVar(&cfg.ClientTimeout,
		clientTimeoutFlag,
		defaults.ClientTimeout,
		"How long a request may take including retries.")

	cmd.PersistentFlags().StringVarP(&cfg.Output,
		outputFlag,
		"o",
		OutputTable,
		"Output format, one of: table, json.")
}

// ValidateOutput checks the requested output format.
func ValidateOutput(cfg *config.Config) error {
	switch cfg.Output {
	case OutputTable, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", cfg.Output)
	}
}
