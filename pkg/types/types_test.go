package types_test

import (
	"encoding/json"
	"testing"

	"pulse-node/pkg/models"
	"pulse-node/pkg/types"

	g "github.com/onsi/gomega"
)

func TestNewNodeInfo_rounding(t *testing.T) {
	g.RegisterTestingT(t)

	state := models.NodeState{
		ID:                "cpu-node-01",
		Class:             models.NodeClassCPU,
		Status:            models.NodeStatusDraining,
		CPUUtilization:    42.123456,
		MemoryUtilization: 50.005,
		MemoryUsed:        1.5 * models.GiB,
		MemoryTotal:       models.CPUNodeMemoryBytes,
	}

	info := types.NewNodeInfo(state)

	g.Expect(info.CPUUtilization).To(g.Equal(42.12))
	g.Expect(info.MemoryUsedGB).To(g.Equal(1.5))
	g.Expect(info.MemoryTotalGB).To(g.Equal(512.0))
	g.Expect(info.IsUp).To(g.BeTrue())
	g.Expect(info.Status).To(g.Equal("draining"))
	g.Expect(info.GPUCount).To(g.BeZero())
}

func TestNodeList_json(t *testing.T) {
	g.RegisterTestingT(t)

	list := types.NewNodeList([]models.NodeState{
		{ID: "cpu-node-01", Class: models.NodeClassCPU, Status: models.NodeStatusDown, MemoryTotal: models.CPUNodeMemoryBytes},
	})

	data, err := json.Marshal(list)
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(string(data)).To(g.MatchJSON(`{
		"nodes": [{
			"id": "cpu-node-01",
			"type": "cpu",
			"status": "down",
			"is_up": false,
			"cpu_utilization": 0,
			"memory_utilization": 0,
			"memory_used_gb": 0,
			"memory_total_gb": 512
		}],
		"total": 1
	}`))
}

func TestNewNodeDetail_gpus(t *testing.T) {
	g.RegisterTestingT(t)

	spec := models.BuiltinSpecs()[1]
	state := models.NodeState{
		ID:     "gpu-node-02",
		Class:  models.NodeClassGPU,
		Status: models.NodeStatusUp,
		GPUs: []models.GPU{
			models.NewGPU("gpu-node-02", 0, spec, 36.789),
			models.NewGPU("gpu-node-02", 1, spec, 37),
		},
	}

	detail := types.NewNodeDetail(state)

	g.Expect(detail.GPUCount).To(g.Equal(2))
	g.Expect(detail.GPUs).To(g.HaveLen(2))
	g.Expect(detail.GPUs[0].Temperature).To(g.Equal(36.79))
	g.Expect(detail.GPUs[1].UUID).To(g.Equal(models.GPUUUID("gpu-node-02", 1)))
	g.Expect(detail.GPUs[1].Model).To(g.Equal(models.GPUModelH100))
}

func TestNewTransitionResponse(t *testing.T) {
	g.RegisterTestingT(t)

	changed := types.NewTransitionResponse(models.ActionDrain, models.Transition{
		NodeID: "gpu-node-01", From: models.NodeStatusUp, To: models.NodeStatusDraining, Changed: true,
	})
	g.Expect(changed.Status).To(g.Equal("draining"))
	g.Expect(changed.PreviousStatus).To(g.Equal("up"))
	g.Expect(changed.Message).To(g.Equal("drain applied to node gpu-node-01: up -> draining"))

	noop := types.NewTransitionResponse(models.ActionResume, models.Transition{
		NodeID: "gpu-node-01", From: models.NodeStatusUp, To: models.NodeStatusUp,
	})
	g.Expect(noop.Changed).To(g.BeFalse())
	g.Expect(noop.Message).To(g.Equal("node gpu-node-01 is already up"))
}
