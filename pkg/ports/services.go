package ports

import (
	"context"
	"time"

	"pulse-node/pkg/models"
)

// ClusterService is the port the HTTP surface uses to query and steer the cluster.
type ClusterService interface {
	Nodes(ctx context.Context) []models.NodeState
	Node(ctx context.Context, id string) (models.NodeState, error)
	Status(ctx context.Context) models.ClusterStatus
	Apply(ctx context.Context, id string, action models.LifecycleAction) (models.Transition, error)
}

// MetricsSink receives the committed state of the cluster for exposition.
type MetricsSink interface {
	// Topology records the fixed size of the cluster.
	Topology(nodes, gpus int)
	// ObserveNode records one node's committed state after a tick.
	ObserveNode(sample NodeSample)
	// ObserveTick records the outcome of a whole tick.
	ObserveTick(duration time.Duration, failedNodes int)
	// ObserveTransition records a lifecycle request.
	ObserveTransition(transition models.Transition)
}

// NodeSample is the committed state of a node after a tick and the growth of its
// cumulative counters during that tick.
type NodeSample struct {
	State models.NodeState
	Delta NodeDelta
}

// NodeDelta holds counter growth. GPUs is indexed like State.GPUs.
type NodeDelta struct {
	NetworkRx float64
	NetworkTx float64
	GPUs      []GPUDelta
}

type GPUDelta struct {
	ECCErrors      uint64
	InterconnectTx float64
	InterconnectRx float64
}
