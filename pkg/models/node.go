package models

import (
	"fmt"
	"regexp"

	perrors "pulse-node/pkg/errors"
)

// MaxNodeIDLen is the longest node id accepted from callers.
const MaxNodeIDLen = 64

var nodeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateNodeID checks a caller supplied node id before it is looked up.
func ValidateNodeID(id string) error {
	switch {
	case id == "":
		return perrors.ErrNodeIDRequired
	case len(id) > MaxNodeIDLen:
		return fmt.Errorf("%w: longer than %d characters", perrors.ErrInvalidNodeID, MaxNodeIDLen)
	case !nodeIDPattern.MatchString(id):
		return fmt.Errorf("%w: %q may only contain letters, digits, '-' and '_'", perrors.ErrInvalidNodeID, id)
	}

	return nil
}

// NodeClass is the hardware class of a simulated node.
type NodeClass string

const (
	NodeClassGPU NodeClass = "gpu"
	NodeClassCPU NodeClass = "cpu"
)

// NodeStatus is the lifecycle status of a node.
type NodeStatus string

const (
	// NodeStatusUp nodes take part in every tick.
	NodeStatusUp NodeStatus = "up"
	// NodeStatusDraining nodes tick like up nodes but are reported distinctly.
	NodeStatusDraining NodeStatus = "draining"
	// NodeStatusDown nodes are frozen and reported unavailable.
	NodeStatusDown NodeStatus = "down"
)

// NodeStatuses lists every status in reporting order.
var NodeStatuses = []NodeStatus{NodeStatusUp, NodeStatusDraining, NodeStatusDown}

const (
	GiB = 1024 * 1024 * 1024
	MiB = 1024 * 1024

	// GPUNodeMemoryBytes is the fixed memory total of every GPU-class node.
	GPUNodeMemoryBytes = 2048 * GiB
	// CPUNodeMemoryBytes is the fixed memory total of every CPU-class node.
	CPUNodeMemoryBytes = 512 * GiB
)

// NodeState is the complete mutable state of a node. Values of this type handed out by the
// registry are private copies and may be read without any lock.
type NodeState struct {
	ID     string
	Class  NodeClass
	Status NodeStatus

	CPUUtilization    float64
	MemoryUtilization float64
	// Memory values are in bytes.
	MemoryUsed  float64
	MemoryTotal float64

	// Cumulative since process start, in bytes.
	NetworkRx float64
	NetworkTx float64

	GPUs []GPU
}

// Available reports whether the node takes part in simulation.
func (s NodeState) Available() bool {
	return s.Status != NodeStatusDown
}

// Clone returns a deep copy that shares nothing mutable with s.
func (s NodeState) Clone() NodeState {
	out := s
	if s.GPUs != nil {
		out.GPUs = make([]GPU, len(s.GPUs))
		copy(out.GPUs, s.GPUs)
	}

	return out
}

// Transition is the outcome of a lifecycle request against one node.
type Transition struct {
	NodeID  string
	Class   NodeClass
	From    NodeStatus
	To      NodeStatus
	Changed bool
}

// LifecycleAction is a request to change a node's lifecycle status.
type LifecycleAction string

const (
	ActionDrain  LifecycleAction = "drain"
	ActionResume LifecycleAction = "resume"
	// ActionFail and ActionRecover are the fault injection path into and out of down.
	ActionFail    LifecycleAction = "fail"
	ActionRecover LifecycleAction = "recover"
)

// IsFaultInjection reports whether the action belongs to the fault injection path.
func (a LifecycleAction) IsFaultInjection() bool {
	return a == ActionFail || a == ActionRecover
}

// GPUActiveThreshold is the utilization above which a GPU counts as active.
const GPUActiveThreshold = 20.0

// ClusterStatus summarises the fleet.
type ClusterStatus struct {
	NodesTotal    int
	NodesUp       int
	NodesDraining int
	NodesDown     int
	GPUsTotal     int
	GPUsActive    int
}

// Summarize builds a ClusterStatus from node snapshots. GPUs of down nodes never count as
// active.
func Summarize(states []NodeState) ClusterStatus {
	status := ClusterStatus{NodesTotal: len(states)}

	for _, state := range states {
		status.GPUsTotal += len(state.GPUs)

		switch state.Status {
		case NodeStatusUp:
			status.NodesUp++
		case NodeStatusDraining:
			status.NodesDraining++
		case NodeStatusDown:
			status.NodesDown++

			continue
		}

		for _, gpu := range state.GPUs {
			if gpu.Utilization > GPUActiveThreshold {
				status.GPUsActive++
			}
		}
	}

	return status
}
