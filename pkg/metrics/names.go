package metrics

// Metric names. Node series use the pulse_ prefix, GPU series follow the DCGM exporter.
const (
	NodeUp                = "pulse_node_up"
	NodeStatus            = "pulse_node_status"
	NodeCPUUtilization    = "pulse_cpu_utilization"
	NodeMemoryUtilization = "pulse_memory_utilization"
	NodeMemoryUsedBytes   = "pulse_memory_used_bytes"
	NodeMemoryTotalBytes  = "pulse_memory_total_bytes"
	NodeNetworkRxBytes    = "pulse_network_receive_bytes_total"
	NodeNetworkTxBytes    = "pulse_network_transmit_bytes_total"

	GPUUtilization    = "dcgm_gpu_utilization"
	GPUMemCopyUtil    = "dcgm_mem_copy_utilization"
	GPUMemoryUsed     = "dcgm_memory_used"
	GPUMemoryTotal    = "dcgm_memory_total"
	GPUTemperature    = "dcgm_gpu_temp"
	GPUPowerUsage     = "dcgm_power_usage"
	GPUSMClock        = "dcgm_sm_clock"
	GPUMemoryClock    = "dcgm_memory_clock"
	GPUECCErrors      = "dcgm_ecc_sbe_count"
	GPUInterconnectTx = "dcgm_pcie_tx_bytes"
	GPUInterconnectRx = "dcgm_pcie_rx_bytes"

	ClusterNodesTotal = "pulse_cluster_nodes_total"
	ClusterGPUsTotal  = "pulse_cluster_gpus_total"

	SimulatorTicks        = "pulse_simulator_ticks_total"
	SimulatorTickDuration = "pulse_simulator_tick_duration_seconds"
	SimulatorNodeFailures = "pulse_simulator_node_tick_failures_total"

	LifecycleTransitions = "pulse_lifecycle_transitions_total"
)

// Label names.
const (
	LabelNode     = "node"
	LabelNodeType = "node_type"
	LabelStatus   = "status"
	LabelGPUIndex = "gpu_index"
	LabelGPUModel = "gpu_model"
	LabelUUID     = "UUID"
	LabelFrom     = "from"
	LabelTo       = "to"
)
