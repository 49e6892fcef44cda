package health

import (
	"context"
	"fmt"
	"io"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/command/output"
	"pulse-node/internal/config"
	"pulse-node/pkg/defaults"
	"pulse-node/pkg/flags"
	"pulse-node/pkg/grpcserver"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const grpcEndpointFlag = "grpc-endpoint"

type result struct {
	HTTP     string `json:"http"`
	Instance string `json:"instance,omitempty"`
	GRPC     string `json:"grpc,omitempty"`
}

func NewCommand(cfg *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the simulator HTTP and gRPC health endpoints",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return cmdflags.ValidateOutput(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmdflags.AddClientFlagsToCommand(cmd, cfg)

	cmd.Flags().StringVar(&cfg.HealthGRPCEndpoint,
		grpcEndpointFlag,
		"",
		"The gRPC health endpoint to check as well, e.g. localhost:9090.")

	return cmd, nil
}

func run(ctx context.Context, out io.Writer, cfg *config.Config) error {
	health, err := output.NewClient(cfg).Health(ctx)
	if err != nil {
		return fmt.Errorf("checking http health: %w", err)
	}

	res := result{HTTP: health.Status, Instance: health.Instance}

	if cfg.HealthGRPCEndpoint != "" {
		status, err := grpcserver.Check(ctx, cfg.HealthGRPCEndpoint, defaults.ServiceName)
		if err != nil {
			return err
		}

		res.GRPC = status.String()

		if status != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("grpc health of %s is %s", cfg.HealthGRPCEndpoint, res.GRPC)
		}
	}

	return output.Print(out, cfg.Output, res, func(w io.Writer) error {
		fmt.Fprintf(w, "HTTP\t%s\t%s\n", res.HTTP, res.Instance)

		if res.GRPC != "" {
			fmt.Fprintf(w, "GRPC\t%s\t%s\n", res.GRPC, cfg.HealthGRPCEndpoint)
		}

		return nil
	})
}
