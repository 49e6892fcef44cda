package cluster

import (
	"sync"

	"pulse-node/pkg/models"
)

// Node is the registry's handle on one simulated node. The handle itself is immutable;
// everything mutable sits behind mu.
type Node struct {
	id       string
	class    models.NodeClass
	gpuCount int

	mu    sync.RWMutex
	state models.NodeState
}

func newNode(state models.NodeState) *Node {
	return &Node{
		id:       state.ID,
		class:    state.Class,
		gpuCount: len(state.GPUs),
		state:    state,
	}
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Class() models.NodeClass {
	return n.class
}

func (n *Node) GPUCount() int {
	return n.gpuCount
}

// Snapshot returns a copy of the node's committed state.
func (n *Node) Snapshot() models.NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.state.Clone()
}

// Status returns the node's lifecycle status.
func (n *Node) Status() models.NodeStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.state.Status
}

// Commit runs step against a private copy of the node's state under the node lock and
// stores the result. Identity and lifecycle status are owned elsewhere and are restored
// after step returns. If step panics the committed state is left as it was and the panic
// propagates once the lock is released.
func (n *Node) Commit(step func(state *models.NodeState)) (prev, next models.NodeState) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev = n.state.Clone()

	working := n.state.Clone()
	step(&working)

	working.ID = prev.ID
	working.Class = prev.Class
	working.Status = prev.Status

	n.state = working

	return prev, working.Clone()
}

// apply moves the node through the lifecycle state machine.
func (n *Node) apply(action models.LifecycleAction) models.Transition {
	n.mu.Lock()
	defer n.mu.Unlock()

	from := n.state.Status
	to := nextStatus(action, from)
	n.state.Status = to

	return models.Transition{
		NodeID:  n.id,
		Class:   n.class,
		From:    from,
		To:      to,
		Changed: from != to,
	}
}
