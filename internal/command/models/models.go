package models

import (
	"fmt"
	"io"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/command/output"
	"pulse-node/internal/config"
	"pulse-node/pkg/flags"
	gpumodels "pulse-node/pkg/models"
	"pulse-node/pkg/types"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const gpuModelsFileFlag = "gpu-models-file"

func NewCommand(cfg *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the GPU models the simulator knows",
		Args:  cobra.NoArgs,
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return cmdflags.ValidateOutput(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(afero.NewOsFs(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.GPUModelsFile,
		gpuModelsFileFlag,
		"",
		"A TOML or YAML file with additional GPU models.")

	cmd.Flags().StringVarP(&cfg.Output,
		"output",
		"o",
		cmdflags.OutputTable,
		"Output format, one of: table, json.")

	return cmd, nil
}

func run(fs afero.Fs, out io.Writer, cfg *config.Config) error {
	table, err := gpumodels.LoadModelTable(fs, cfg.GPUModelsFile)
	if err != nil {
		return err
	}

	infos := make([]types.GPUModelInfo, 0, table.Len())
	for _, spec := range table.Models() {
		infos = append(infos, types.NewGPUModelInfo(spec))
	}

	return output.Print(out, cfg.Output, infos, func(w io.Writer) error {
		fmt.Fprintln(w, "MODEL\tMEMORY MIB\tMAX POWER W\tMAX TEMP C\tSM MHZ\tMEM MHZ")

		for _, m := range infos {
			fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\n",
				m.Model, m.MemoryMiB, m.MaxPowerW, m.MaxTempC, m.BaseSMClock, m.BaseMemClock)
		}

		return nil
	})
}
