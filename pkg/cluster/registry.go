package cluster

import (
	"fmt"
	"math"
	"sync"

	"pulse-node/pkg/defaults"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"
)

// Topology describes the cluster to build.
type Topology struct {
	GPUNodes    int
	CPUNodes    int
	GPUsPerNode int
	// GPUModels is rotated across GPU nodes: node i uses GPUModels[i%len(GPUModels)].
	GPUModels []string
}

// DefaultTopology returns the shape the simulator runs with unless configured otherwise.
func DefaultTopology(gpuNodes, cpuNodes int) Topology {
	return Topology{
		GPUNodes:    gpuNodes,
		CPUNodes:    cpuNodes,
		GPUsPerNode: defaults.GPUsPerNode,
		GPUModels:   []string{models.GPUModelA100, models.GPUModelH100},
	}
}

func (t Topology) validate() error {
	switch {
	case t.GPUNodes < 0:
		return perrors.NewInvalidTopology("gpu node count %d is negative", t.GPUNodes)
	case t.CPUNodes < 0:
		return perrors.NewInvalidTopology("cpu node count %d is negative", t.CPUNodes)
	case t.GPUNodes > 0 && t.GPUsPerNode <= 0:
		return perrors.NewInvalidTopology("gpus per node must be positive, got %d", t.GPUsPerNode)
	case t.GPUNodes > 0 && len(t.GPUModels) == 0:
		return perrors.NewInvalidTopology("at least one gpu model is required for gpu nodes")
	}

	return nil
}

// Registry owns every simulated node. mu only guards enumeration of the node list; node
// fields are guarded by each node's own lock.
type Registry struct {
	mu       sync.RWMutex
	nodes    []*Node
	index    map[string]*Node
	gpuCount int
}

var _ ports.NodeRepository = (*Registry)(nil)

// NewRegistry builds the cluster described by topo. rnd only seeds starting temperatures.
func NewRegistry(table *models.ModelTable, topo Topology, rnd ports.Random) (*Registry, error) {
	if err := topo.validate(); err != nil {
		return nil, err
	}

	specs := make([]models.GPUSpec, 0, len(topo.GPUModels))

	if topo.GPUNodes > 0 {
		for _, model := range topo.GPUModels {
			spec, err := table.Lookup(model)
			if err != nil {
				return nil, fmt.Errorf("building gpu nodes: %w", err)
			}

			specs = append(specs, spec)
		}
	}

	r := &Registry{
		nodes: make([]*Node, 0, topo.GPUNodes+topo.CPUNodes),
		index: make(map[string]*Node, topo.GPUNodes+topo.CPUNodes),
	}

	for i := 0; i < topo.GPUNodes; i++ {
		r.add(newGPUNodeState(NodeID(models.NodeClassGPU, i+1), specs[i%len(specs)], topo.GPUsPerNode, rnd))
	}

	for i := 0; i < topo.CPUNodes; i++ {
		r.add(newCPUNodeState(NodeID(models.NodeClassCPU, i+1)))
	}

	return r, nil
}

// NodeID returns the identifier of the n-th (1-based) node of a class.
func NodeID(class models.NodeClass, n int) string {
	return fmt.Sprintf("%s-node-%02d", class, n)
}

func newGPUNodeState(id string, spec models.GPUSpec, gpuCount int, rnd ports.Random) models.NodeState {
	gpus := make([]models.GPU, gpuCount)
	for i := range gpus {
		temp := math.Min(models.IdleTempC+rnd.Float64()*models.IdleTempSpreadC, spec.MaxTempC)
		gpus[i] = models.NewGPU(id, i, spec, temp)
	}

	return models.NodeState{
		ID:          id,
		Class:       models.NodeClassGPU,
		Status:      models.NodeStatusUp,
		MemoryTotal: models.GPUNodeMemoryBytes,
		GPUs:        gpus,
	}
}

func newCPUNodeState(id string) models.NodeState {
	return models.NodeState{
		ID:          id,
		Class:       models.NodeClassCPU,
		Status:      models.NodeStatusUp,
		MemoryTotal: models.CPUNodeMemoryBytes,
	}
}

func (r *Registry) add(state models.NodeState) {
	node := newNode(state)
	r.nodes = append(r.nodes, node)
	r.index[node.ID()] = node
	r.gpuCount += node.GPUCount()
}

// Nodes returns the node handles in registry order. The slice is a copy.
func (r *Registry) Nodes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]*Node, len(r.nodes))
	copy(nodes, r.nodes)

	return nodes
}

// Node returns the handle of the node with the given id.
func (r *Registry) Node(id string) (*Node, error) {
	r.mu.RLock()
	node, ok := r.index[id]
	r.mu.RUnlock()

	if !ok {
		return nil, perrors.NewNodeNotFound(id)
	}

	return node, nil
}

// Get returns a copy of the node's committed state.
func (r *Registry) Get(id string) (models.NodeState, error) {
	node, err := r.Node(id)
	if err != nil {
		return models.NodeState{}, err
	}

	return node.Snapshot(), nil
}

// Snapshot reads every node under its own lock. Each entry is consistent on its own; the
// entries are not taken at one common instant.
func (r *Registry) Snapshot() []models.NodeState {
	nodes := r.Nodes()

	states := make([]models.NodeState, 0, len(nodes))
	for _, node := range nodes {
		states = append(states, node.Snapshot())
	}

	return states
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.nodes)
}

func (r *Registry) GPUCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.gpuCount
}
