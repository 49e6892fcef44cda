package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/config"
	"pulse-node/internal/version"
	"pulse-node/pkg/defaults"
	"pulse-node/pkg/models"
	"pulse-node/pkg/types"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd, err := NewRootCommand()
	require.NoError(t, err)

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err = cmd.Execute()

	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pulse undefined\n", out)
}

func TestModelsCommand_json(t *testing.T) {
	out, err := execute(t, "models", "-o", "json")
	require.NoError(t, err)

	var infos []types.GPUModelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.Model)
	}

	assert.Contains(t, ids, models.GPUModelA100)
	assert.Contains(t, ids, models.GPUModelH100)
}

func TestModelsCommand_rejectsOutput(t *testing.T) {
	_, err := execute(t, "models", "-o", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestNodesCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/nodes":
			_ = json.NewEncoder(w).Encode(types.NodeList{
				Nodes: []types.NodeInfo{
					{ID: "gpu-node-01", Type: "gpu", Status: "up", IsUp: true, GPUCount: 8},
					{ID: "cpu-node-01", Type: "cpu", Status: "draining", IsUp: true},
				},
				Total: 2,
			})
		case "/api/nodes/cpu-node-01/drain":
			assert.Equal(t, http.MethodPost, r.Method)
			_ = json.NewEncoder(w).Encode(types.TransitionResponse{
				NodeID:         "cpu-node-01",
				Status:         "draining",
				PreviousStatus: "up",
				Changed:        true,
				Message:        "drain applied to node cpu-node-01: up -> draining",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "node not found"})
		}
	}))
	defer server.Close()

	out, err := execute(t, "nodes", "list", "--api-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "gpu-node-01")
	assert.Contains(t, out, "draining")

	out, err = execute(t, "nodes", "drain", "cpu-node-01", "--api-url", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "drain applied to node cpu-node-01: up -> draining\n", out)

	_, err = execute(t, "nodes", "get", "gpu-node-42", "--api-url", server.URL)
	assert.ErrorContains(t, err, "node not found")
}

func TestAddRootSubCommands_sharedConfigKeepsServerDefaults(t *testing.T) {
	cfg := &config.Config{}
	root := &cobra.Command{Use: "pulse"}

	require.NoError(t, addRootSubCommands(root, cfg))

	assert.Equal(t, defaults.GRPCAPIEndpoint, cfg.GRPCAPIEndpoint)
	assert.Equal(t, defaults.HTTPAPIEndpoint, cfg.HTTPAPIEndpoint)
	assert.Equal(t, defaults.TickInterval, cfg.TickInterval)
	assert.Equal(t, defaults.APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, cmdflags.OutputTable, cfg.Output)
	assert.Empty(t, cfg.HealthGRPCEndpoint)

	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, runCmd.ParseFlags([]string{"--grpc-endpoint", "127.0.0.1:9191"}))

	healthCmd, _, err := root.Find([]string{"health"})
	require.NoError(t, err)
	require.NoError(t, healthCmd.ParseFlags([]string{"--grpc-endpoint", "localhost:9090"}))

	assert.Equal(t, "127.0.0.1:9191", cfg.GRPCAPIEndpoint)
	assert.Equal(t, "localhost:9090", cfg.HealthGRPCEndpoint)
}
