package status

import (
	"context"
	"fmt"
	"io"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/command/output"
	"pulse-node/internal/config"
	"pulse-node/pkg/flags"

	"github.com/spf13/cobra"
)

func NewCommand(cfg *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cluster summary",
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

	return cmd, nil
}

func run(ctx context.Context, out io.Writer, cfg *config.Config) error {
	status, err := output.NewClient(cfg).ClusterStatus(ctx)
	if err != nil {
		return fmt.Errorf("getting cluster status: %w", err)
	}

	return output.Print(out, cfg.Output, status, func(w io.Writer) error {
		fmt.Fprintf(w, "NODES\t%d\n", status.NodesTotal)
		fmt.Fprintf(w, "  UP\t%d\n", status.NodesUp)
		fmt.Fprintf(w, "  DRAINING\t%d\n", status.NodesDraining)
		fmt.Fprintf(w, "  DOWN\t%d\n", status.NodesDown)
		fmt.Fprintf(w, "GPUS\t%d\n", status.GPUsTotal)
		fmt.Fprintf(w, "  ACTIVE\t%d\n", status.GPUsActive)

		return nil
	})
}
