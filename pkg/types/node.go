package types

import (
	"fmt"
	"math"

	"pulse-node/pkg/models"
)

// NodeInfo is the summary row of a node in the aggregated snapshot.
type NodeInfo struct {
	ID                string  `json:"id"`
	Type              string  `json:"type"`
	Status            string  `json:"status"`
	IsUp              bool    `json:"is_up"`
	CPUUtilization    float64 `json:"cpu_utilization"`
	MemoryUtilization float64 `json:"memory_utilization"`
	MemoryUsedGB      float64 `json:"memory_used_gb"`
	MemoryTotalGB     float64 `json:"memory_total_gb"`
	GPUCount          int     `json:"gpu_count,omitempty"`
}

// NodeList is the aggregated snapshot of the cluster.
type NodeList struct {
	Nodes []NodeInfo `json:"nodes"`
	Total int        `json:"total"`
}

// NodeDetail is a node with its GPU readings.
type NodeDetail struct {
	NodeInfo
	NetworkRxBytes float64   `json:"network_rx_bytes"`
	NetworkTxBytes float64   `json:"network_tx_bytes"`
	GPUs           []GPUInfo `json:"gpus,omitempty"`
}

// ClusterStatus is the fleet summary.
type ClusterStatus struct {
	NodesTotal    int `json:"nodes_total"`
	NodesUp       int `json:"nodes_up"`
	NodesDraining int `json:"nodes_draining"`
	NodesDown     int `json:"nodes_down"`
	GPUsTotal     int `json:"gpus_total"`
	GPUsActive    int `json:"gpus_active"`
}

// TransitionResponse reports the outcome of a lifecycle request.
type TransitionResponse struct {
	NodeID         string `json:"node_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
	Changed        bool   `json:"changed"`
	Message        string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Instance string `json:"instance,omitempty"`
}

func NewNodeInfo(state models.NodeState) NodeInfo {
	return NodeInfo{
		ID:                state.ID,
		Type:              string(state.Class),
		Status:            string(state.Status),
		IsUp:              state.Available(),
		CPUUtilization:    round2(state.CPUUtilization),
		MemoryUtilization: round2(state.MemoryUtilization),
		MemoryUsedGB:      round2(state.MemoryUsed / models.GiB),
		MemoryTotalGB:     round2(state.MemoryTotal / models.GiB),
		GPUCount:          len(state.GPUs),
	}
}

func NewNodeList(states []models.NodeState) NodeList {
	nodes := make([]NodeInfo, 0, len(states))
	for _, state := range states {
		nodes = append(nodes, NewNodeInfo(state))
	}

	return NodeList{Nodes: nodes, Total: len(nodes)}
}

func NewNodeDetail(state models.NodeState) NodeDetail {
	detail := NodeDetail{
		NodeInfo:       NewNodeInfo(state),
		NetworkRxBytes: state.NetworkRx,
		NetworkTxBytes: state.NetworkTx,
	}

	for _, gpu := range state.GPUs {
		detail.GPUs = append(detail.GPUs, NewGPUInfo(gpu))
	}

	return detail
}

func NewClusterStatus(status models.ClusterStatus) ClusterStatus {
	return ClusterStatus(status)
}

func NewTransitionResponse(action models.LifecycleAction, transition models.Transition) TransitionResponse {
	message := fmt.Sprintf("node %s is already %s", transition.NodeID, transition.To)
	if transition.Changed {
		message = fmt.Sprintf("%s applied to node %s: %s -> %s", action, transition.NodeID, transition.From, transition.To)
	}

	return TransitionResponse{
		NodeID:         transition.NodeID,
		Status:         string(transition.To),
		PreviousStatus: string(transition.From),
		Changed:        transition.Changed,
		Message:        message,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
