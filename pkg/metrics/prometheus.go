package metrics

import (
	"fmt"
	"strconv"
	"time"

	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	nodeLabels   = []string{LabelNode, LabelNodeType}
	statusLabels = []string{LabelNode, LabelNodeType, LabelStatus}
	gpuLabels    = []string{LabelNode, LabelGPUIndex, LabelGPUModel, LabelUUID}
)

// PrometheusSink exposes the simulated cluster as Prometheus series. Counters are advanced
// by the per-tick deltas of the simulated counters, so they match the committed totals.
type PrometheusSink struct {
	nodeUp       *prometheus.GaugeVec
	nodeStatus   *prometheus.GaugeVec
	cpuUtil      *prometheus.GaugeVec
	memUtil      *prometheus.GaugeVec
	memUsed      *prometheus.GaugeVec
	memTotal     *prometheus.GaugeVec
	networkRx    *prometheus.CounterVec
	networkTx    *prometheus.CounterVec
	gpuUtil      *prometheus.GaugeVec
	gpuMemUtil   *prometheus.GaugeVec
	gpuMemUsed   *prometheus.GaugeVec
	gpuMemTotal  *prometheus.GaugeVec
	gpuTemp      *prometheus.GaugeVec
	gpuPower     *prometheus.GaugeVec
	gpuSMClock   *prometheus.GaugeVec
	gpuMemClock  *prometheus.GaugeVec
	gpuECC       *prometheus.CounterVec
	gpuTx        *prometheus.CounterVec
	gpuRx        *prometheus.CounterVec
	nodesTotal   prometheus.Gauge
	gpusTotal    prometheus.Gauge
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	nodeFailures prometheus.Counter
	transitions  *prometheus.CounterVec
}

var _ ports.MetricsSink = (*PrometheusSink)(nil)

// NewPrometheusSink creates the collectors and registers them with registry.
func NewPrometheusSink(registry prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		nodeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeUp,
			Help: "Whether the node is available (1) or down (0)",
		}, nodeLabels),
		nodeStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeStatus,
			Help: "Lifecycle status of the node, 1 for the current status",
		}, statusLabels),
		cpuUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeCPUUtilization,
			Help: "CPU utilization percentage",
		}, nodeLabels),
		memUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeMemoryUtilization,
			Help: "Memory utilization percentage",
		}, nodeLabels),
		memUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeMemoryUsedBytes,
			Help: "Memory used in bytes",
		}, nodeLabels),
		memTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: NodeMemoryTotalBytes,
			Help: "Memory total in bytes",
		}, nodeLabels),
		networkRx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NodeNetworkRxBytes,
			Help: "Network bytes received",
		}, nodeLabels),
		networkTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NodeNetworkTxBytes,
			Help: "Network bytes transmitted",
		}, nodeLabels),
		gpuUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUUtilization,
			Help: "GPU utilization percentage",
		}, gpuLabels),
		gpuMemUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUMemCopyUtil,
			Help: "GPU memory utilization percentage",
		}, gpuLabels),
		gpuMemUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUMemoryUsed,
			Help: "GPU framebuffer memory used in MiB",
		}, gpuLabels),
		gpuMemTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUMemoryTotal,
			Help: "GPU framebuffer memory total in MiB",
		}, gpuLabels),
		gpuTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUTemperature,
			Help: "GPU temperature in degrees Celsius",
		}, gpuLabels),
		gpuPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUPowerUsage,
			Help: "GPU power draw in watts",
		}, gpuLabels),
		gpuSMClock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUSMClock,
			Help: "GPU SM clock in MHz",
		}, gpuLabels),
		gpuMemClock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: GPUMemoryClock,
			Help: "GPU memory clock in MHz",
		}, gpuLabels),
		gpuECC: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GPUECCErrors,
			Help: "GPU single-bit ECC errors",
		}, gpuLabels),
		gpuTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GPUInterconnectTx,
			Help: "GPU interconnect bytes transmitted",
		}, gpuLabels),
		gpuRx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GPUInterconnectRx,
			Help: "GPU interconnect bytes received",
		}, gpuLabels),
		nodesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: ClusterNodesTotal,
			Help: "Number of simulated nodes",
		}),
		gpusTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: ClusterGPUsTotal,
			Help: "Number of simulated GPUs",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: SimulatorTicks,
			Help: "Total number of simulation ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    SimulatorTickDuration,
			Help:    "Duration of a simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		nodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: SimulatorNodeFailures,
			Help: "Total number of node updates that failed during a tick",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LifecycleTransitions,
			Help: "Total number of lifecycle status changes",
		}, []string{LabelFrom, LabelTo}),
	}

	collectors := map[string]prometheus.Collector{
		NodeUp:                s.nodeUp,
		NodeStatus:            s.nodeStatus,
		NodeCPUUtilization:    s.cpuUtil,
		NodeMemoryUtilization: s.memUtil,
		NodeMemoryUsedBytes:   s.memUsed,
		NodeMemoryTotalBytes:  s.memTotal,
		NodeNetworkRxBytes:    s.networkRx,
		NodeNetworkTxBytes:    s.networkTx,
		GPUUtilization:        s.gpuUtil,
		GPUMemCopyUtil:        s.gpuMemUtil,
		GPUMemoryUsed:         s.gpuMemUsed,
		GPUMemoryTotal:        s.gpuMemTotal,
		GPUTemperature:        s.gpuTemp,
		GPUPowerUsage:         s.gpuPower,
		GPUSMClock:            s.gpuSMClock,
		GPUMemoryClock:        s.gpuMemClock,
		GPUECCErrors:          s.gpuECC,
		GPUInterconnectTx:     s.gpuTx,
		GPUInterconnectRx:     s.gpuRx,
		ClusterNodesTotal:     s.nodesTotal,
		ClusterGPUsTotal:      s.gpusTotal,
		SimulatorTicks:        s.ticks,
		SimulatorTickDuration: s.tickDuration,
		SimulatorNodeFailures: s.nodeFailures,
		LifecycleTransitions:  s.transitions,
	}

	for name, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register %s metric: %w", name, err)
		}
	}

	return s, nil
}

func (s *PrometheusSink) Topology(nodes, gpus int) {
	s.nodesTotal.Set(float64(nodes))
	s.gpusTotal.Set(float64(gpus))
}

// ObserveNode publishes a node's committed state. A down node keeps its last readings and
// only its availability drops to 0.
func (s *PrometheusSink) ObserveNode(sample ports.NodeSample) {
	state := sample.State
	labels := prometheus.Labels{LabelNode: state.ID, LabelNodeType: string(state.Class)}

	s.setStatus(state.ID, state.Class, state.Status)

	s.cpuUtil.With(labels).Set(state.CPUUtilization)
	s.memUtil.With(labels).Set(state.MemoryUtilization)
	s.memUsed.With(labels).Set(state.MemoryUsed)
	s.memTotal.With(labels).Set(state.MemoryTotal)
	s.networkRx.With(labels).Add(sample.Delta.NetworkRx)
	s.networkTx.With(labels).Add(sample.Delta.NetworkTx)

	for i, gpu := range state.GPUs {
		series := prometheus.Labels{
			LabelNode:     state.ID,
			LabelGPUIndex: strconv.Itoa(gpu.Index),
			LabelGPUModel: gpu.Spec.Model,
			LabelUUID:     gpu.UUID,
		}

		s.gpuUtil.With(series).Set(gpu.Utilization)
		s.gpuMemUtil.With(series).Set(gpu.MemoryUtilization)
		s.gpuMemUsed.With(series).Set(gpu.MemoryUsed)
		s.gpuMemTotal.With(series).Set(gpu.Spec.MemoryMiB)
		s.gpuTemp.With(series).Set(gpu.Temperature)
		s.gpuPower.With(series).Set(gpu.PowerUsage)
		s.gpuSMClock.With(series).Set(gpu.SMClock)
		s.gpuMemClock.With(series).Set(gpu.MemClock)

		if i >= len(sample.Delta.GPUs) {
			continue
		}

		delta := sample.Delta.GPUs[i]
		s.gpuECC.With(series).Add(float64(delta.ECCErrors))
		s.gpuTx.With(series).Add(delta.InterconnectTx)
		s.gpuRx.With(series).Add(delta.InterconnectRx)
	}
}

func (s *PrometheusSink) ObserveTick(duration time.Duration, failedNodes int) {
	s.ticks.Inc()
	s.tickDuration.Observe(duration.Seconds())
	s.nodeFailures.Add(float64(failedNodes))
}

// ObserveTransition counts lifecycle requests that changed the status and moves the
// node's status and availability series to the new status straight away.
func (s *PrometheusSink) ObserveTransition(transition models.Transition) {
	if !transition.Changed {
		return
	}

	s.transitions.WithLabelValues(string(transition.From), string(transition.To)).Inc()
	s.setStatus(transition.NodeID, transition.Class, transition.To)
}

// setStatus sets the one-hot status series and node_up for a node.
func (s *PrometheusSink) setStatus(id string, class models.NodeClass, current models.NodeStatus) {
	up := 0.0
	if current != models.NodeStatusDown {
		up = 1
	}

	s.nodeUp.WithLabelValues(id, string(class)).Set(up)

	for _, status := range models.NodeStatuses {
		value := 0.0
		if status == current {
			value = 1
		}

		s.nodeStatus.WithLabelValues(id, string(class), string(status)).Set(value)
	}
}
