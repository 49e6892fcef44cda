package ports

import "pulse-node/pkg/models"

// NodeRepository is the port definition for the store of simulated nodes.
type NodeRepository interface {
	// Get returns a copy of the node's committed state.
	Get(id string) (models.NodeState, error)
	// Snapshot returns a per-node consistent copy of every node in registry order.
	Snapshot() []models.NodeState
	// Apply runs a lifecycle action against a single node.
	Apply(id string, action models.LifecycleAction) (models.Transition, error)
	// Len returns the number of nodes.
	Len() int
	// GPUCount returns the number of GPUs across all nodes.
	GPUCount() int
}

// Random is the source of randomness for the physical model. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	NormFloat64() float64
}
