package command

import (
	"fmt"
	"strings"

	"pulse-node/internal/command/health"
	"pulse-node/internal/command/models"
	"pulse-node/internal/command/nodes"
	"pulse-node/internal/command/run"
	"pulse-node/internal/command/status"
	"pulse-node/internal/config"
	"pulse-node/internal/version"
	"pulse-node/pkg/defaults"
	"pulse-node/pkg/flags"
	"pulse-node/pkg/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCommand() (*cobra.Command, error) {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - simulated HPC cluster telemetry",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags.BindCommandToViper(cmd)

			if err := log.Configure(&cfg.Logging); err != nil {
				return fmt.Errorf("configuring logging: %w", err)
			}

			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return c.Help()
		},
		SilenceUsage: true,
	}

	log.AddFlagsToCommand(cmd, &cfg.Logging)

	if err := addRootSubCommands(cmd, cfg); err != nil {
		return nil, fmt.Errorf("adding subcommands: %w", err)
	}

	cobra.OnInitialize(initCobra)

	return cmd, nil
}

func initCobra() {
	viper.SetEnvPrefix(defaults.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath("$HOME/.config/pulse/")
	viper.AddConfigPath(defaults.ConfigurationDir)

	_ = viper.ReadInConfig()
}

func addRootSubCommands(cmd *cobra.Command, cfg *config.Config) error {
	builders := []struct {
		name string
		new  func(*config.Config) (*cobra.Command, error)
	}{
		{"run", run.NewCommand},
		{"nodes", nodes.NewCommand},
		{"status", status.NewCommand},
		{"health", health.NewCommand},
		{"models", models.NewCommand},
	}

	for _, b := range builders {
		sub, err := b.new(cfg)
		if err != nil {
			return fmt.Errorf("creating %s command: %w", b.name, err)
		}

		cmd.AddCommand(sub)
	}

	cmd.AddCommand(versionCommand())

	return nil
}

func versionCommand() *cobra.Command {
	var long, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of pulse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			switch {
			case short:
				fmt.Fprintln(out, version.Version)
			case long:
				fmt.Fprintf(out, "%s\n  Version:    %s\n  CommitHash: %s\n  BuildDate:  %s\n",
					version.PackageName, version.Version, version.CommitHash, version.BuildDate)
			default:
				fmt.Fprintf(out, "%s %s\n", version.PackageName, version.Version)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "Print long version information")
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
