package nodes

import (
	"fmt"
	"io"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/command/output"
	"pulse-node/internal/config"
	"pulse-node/pkg/flags"
	"pulse-node/pkg/models"

	"github.com/spf13/cobra"
)

func NewCommand(cfg *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Inspect and manage simulated nodes",
		RunE: func(c *cobra.Command, _ []string) error {
			return c.Help()
		},
	}

	cmdflags.AddClientFlagsToCommand(cmd, cfg)

	cmd.AddCommand(listCommand(cfg), getCommand(cfg))

	for _, action := range []struct {
		action models.LifecycleAction
		short  string
	}{
		{models.ActionDrain, "Stop a node accepting work"},
		{models.ActionResume, "Return a draining node to service"},
		{models.ActionFail, "Take a node down (needs fault injection enabled)"},
		{models.ActionRecover, "Bring a down node back up (needs fault injection enabled)"},
	} {
		cmd.AddCommand(actionCommand(cfg, action.action, action.short))
	}

	return cmd, nil
}

// preRun binds the inherited client flags and checks the output format.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, _ []string) error {
		flags.BindCommandToViper(c)

		return cmdflags.ValidateOutput(cfg)
	}
}

func listCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all nodes",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := output.NewClient(cfg).ListNodes(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing nodes: %w", err)
			}

			return output.Print(cmd.OutOrStdout(), cfg.Output, list, func(w io.Writer) error {
				return output.NodeTable(w, list.Nodes)
			})
		},
	}
}

func getCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "get <node-id>",
		Short:   "Show a node and its GPUs",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := output.NewClient(cfg).GetNode(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting node %s: %w", args[0], err)
			}

			return output.Print(cmd.OutOrStdout(), cfg.Output, node, func(w io.Writer) error {
				return output.NodeDetailTable(w, node)
			})
		},
	}
}

func actionCommand(cfg *config.Config, action models.LifecycleAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:     fmt.Sprintf("%s <node-id>", action),
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := output.NewClient(cfg).Apply(cmd.Context(), args[0], action)
			if err != nil {
				return fmt.Errorf("%s node %s: %w", action, args[0], err)
			}

			return output.Print(cmd.OutOrStdout(), cfg.Output, resp, func(w io.Writer) error {
				return output.TransitionTable(w, resp)
			})
		},
	}
}
