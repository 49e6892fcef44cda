package flags_test

import (
	"strings"
	"testing"
	"time"

	"pulse-node/pkg/flags"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testValues struct {
	gpuNodes     int
	cpuNodes     int
	gpuModels    []string
	tickInterval time.Duration
}

func newTestCommand(t *testing.T, args ...string) (*cobra.Command, *testValues) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetEnvPrefix("PULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	values := &testValues{}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&values.gpuNodes, "gpu-nodes", 4, "")
	cmd.Flags().IntVar(&values.cpuNodes, "cpu-nodes", 4, "")
	cmd.Flags().StringSliceVar(&values.gpuModels, "gpu-models", []string{"NVIDIA-A100-80GB"}, "")
	cmd.PersistentFlags().DurationVar(&values.tickInterval, "tick-interval", time.Second, "")

	require.NoError(t, cmd.ParseFlags(args))

	return cmd, values
}

func readConfig(t *testing.T, content string) {
	t.Helper()

	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(content)))
}

func TestBindCommandToViper_defaultsKept(t *testing.T) {
	cmd, values := newTestCommand(t)

	flags.BindCommandToViper(cmd)

	assert.Equal(t, 4, values.gpuNodes)
	assert.Equal(t, []string{"NVIDIA-A100-80GB"}, values.gpuModels)
	assert.Equal(t, time.Second, values.tickInterval)
}

func TestBindCommandToViper_envOverridesDefault(t *testing.T) {
	t.Setenv("PULSE_GPU_NODES", "6")
	t.Setenv("PULSE_TICK_INTERVAL", "250ms")

	cmd, values := newTestCommand(t)

	flags.BindCommandToViper(cmd)

	assert.Equal(t, 6, values.gpuNodes)
	assert.Equal(t, 250*time.Millisecond, values.tickInterval)
	assert.Equal(t, 4, values.cpuNodes)
}

func TestBindCommandToViper_flagBeatsEnv(t *testing.T) {
	t.Setenv("PULSE_GPU_NODES", "6")

	cmd, values := newTestCommand(t, "--gpu-nodes", "2")

	flags.BindCommandToViper(cmd)

	assert.Equal(t, 2, values.gpuNodes)
}

func TestBindCommandToViper_configFile(t *testing.T) {
	cmd, values := newTestCommand(t)

	readConfig(t, `
cpu-nodes: 3
tick-interval: 2s
gpu-models:
  - NVIDIA-L40S
  - NVIDIA-H100-80GB
`)

	flags.BindCommandToViper(cmd)

	assert.Equal(t, 3, values.cpuNodes)
	assert.Equal(t, 2*time.Second, values.tickInterval)
	assert.Equal(t, []string{"NVIDIA-L40S", "NVIDIA-H100-80GB"}, values.gpuModels)
}

func TestBindCommandToViper_envBeatsConfigFile(t *testing.T) {
	t.Setenv("PULSE_CPU_NODES", "9")

	cmd, values := newTestCommand(t)

	readConfig(t, "cpu-nodes: 3\n")

	flags.BindCommandToViper(cmd)

	assert.Equal(t, 9, values.cpuNodes)
}
