package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/config"
	"pulse-node/pkg/client"
	"pulse-node/pkg/types"
)

// NewClient builds an API client from the client flags.
func NewClient(cfg *config.Config) *client.Client {
	return client.New(&client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.ClientTimeout,
	})
}

// Print writes v as indented JSON when the json output is selected, otherwise it hands a
// tab aligned writer to table.
func Print(w io.Writer, format string, v any, table func(tw io.Writer) error) error {
	if format == cmdflags.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if err := table(tw); err != nil {
		return err
	}

	return tw.Flush()
}

func NodeTable(w io.Writer, nodes []types.NodeInfo) error {
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tCPU%\tMEM%\tMEM GB\tGPUS")

	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.1f/%.1f\t%d\n",
			n.ID, n.Type, n.Status, n.CPUUtilization, n.MemoryUtilization,
			n.MemoryUsedGB, n.MemoryTotalGB, n.GPUCount)
	}

	return nil
}

func NodeDetailTable(w io.Writer, node types.NodeDetail) error {
	if err := NodeTable(w, []types.NodeInfo{node.NodeInfo}); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nNETWORK RX\t%.0f\nNETWORK TX\t%.0f\n", node.NetworkRxBytes, node.NetworkTxBytes)

	if len(node.GPUs) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nGPU\tMODEL\tUTIL%\tMEM%\tTEMP C\tPOWER W\tSM MHZ\tECC\tUUID")

	for _, gpu := range node.GPUs {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f\t%d\t%s\n",
			gpu.Index, gpu.Model, gpu.Utilization, gpu.MemoryUtilization, gpu.Temperature,
			gpu.PowerUsage, gpu.SMClock, gpu.ECCErrors, gpu.UUID)
	}

	return nil
}

func TransitionTable(w io.Writer, resp types.TransitionResponse) error {
	_, err := fmt.Fprintln(w, resp.Message)

	return err
}
