package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"pulse-node/pkg/cluster"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/metrics"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	registry *cluster.Registry
	recorder *metrics.Recorder
	driver   *Driver
	logs     *logtest.Hook
}

func newTestEnv(t *testing.T, gpuNodes, cpuNodes int, seed uint64) *testEnv {
	t.Helper()

	registry, err := cluster.NewRegistry(models.DefaultModelTable(), cluster.DefaultTopology(gpuNodes, cpuNodes), NewRand(seed))
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	recorder := metrics.NewRecorder()

	coll := &ports.Collection{
		Repo:   registry,
		Sink:   recorder,
		Random: NewRand(seed + 1),
	}

	return &testEnv{
		registry: registry,
		recorder: recorder,
		driver:   NewDriver(&Config{Interval: 10 * time.Millisecond}, registry, coll, logrus.NewEntry(logger)),
		logs:     hook,
	}
}

func assertGPUBounds(t *testing.T, states []models.NodeState) {
	t.Helper()

	for _, state := range states {
		assert.LessOrEqual(t, state.MemoryUsed, state.MemoryTotal, state.ID)
		assert.GreaterOrEqual(t, state.CPUUtilization, 0.0, state.ID)
		assert.LessOrEqual(t, state.CPUUtilization, 100.0, state.ID)

		for _, gpu := range state.GPUs {
			assert.LessOrEqual(t, gpu.Temperature, gpu.Spec.MaxTempC, "%s gpu %d", state.ID, gpu.Index)
			assert.GreaterOrEqual(t, gpu.Temperature, 0.0, "%s gpu %d", state.ID, gpu.Index)
			assert.LessOrEqual(t, gpu.PowerUsage, gpu.Spec.MaxPowerW, "%s gpu %d", state.ID, gpu.Index)
			assert.LessOrEqual(t, gpu.MemoryUsed, gpu.Spec.MemoryMiB, "%s gpu %d", state.ID, gpu.Index)
			assert.GreaterOrEqual(t, gpu.Utilization, 0.0, "%s gpu %d", state.ID, gpu.Index)
			assert.LessOrEqual(t, gpu.Utilization, 100.0, "%s gpu %d", state.ID, gpu.Index)
		}
	}
}

func TestTick_gpuReadingsStayInBounds(t *testing.T) {
	env := newTestEnv(t, 2, 2, 7)

	for i := 0; i < 500; i++ {
		require.Zero(t, env.driver.Tick())
		assertGPUBounds(t, env.registry.Snapshot())
	}
}

func TestTick_countersMonotonic(t *testing.T) {
	env := newTestEnv(t, 2, 1, 11)

	prev := env.registry.Snapshot()

	for i := 0; i < 200; i++ {
		env.driver.Tick()
		next := env.registry.Snapshot()

		for n := range next {
			assert.GreaterOrEqual(t, next[n].NetworkRx, prev[n].NetworkRx)
			assert.GreaterOrEqual(t, next[n].NetworkTx, prev[n].NetworkTx)

			for j := range next[n].GPUs {
				assert.GreaterOrEqual(t, next[n].GPUs[j].ECCErrors, prev[n].GPUs[j].ECCErrors)
				assert.GreaterOrEqual(t, next[n].GPUs[j].InterconnectTx, prev[n].GPUs[j].InterconnectTx)
				assert.GreaterOrEqual(t, next[n].GPUs[j].InterconnectRx, prev[n].GPUs[j].InterconnectRx)
			}
		}

		prev = next
	}
}

func TestTick_reportsCounterDeltas(t *testing.T) {
	env := newTestEnv(t, 1, 0, 3)

	env.driver.Tick()
	env.driver.Tick()

	state, err := env.registry.Get("gpu-node-01")
	require.NoError(t, err)

	var rx, tx float64
	for _, sample := range env.recorder.SamplesFor("gpu-node-01") {
		rx += sample.Delta.NetworkRx
		tx += sample.Delta.GPUs[0].InterconnectTx
	}

	assert.InDelta(t, state.NetworkRx, rx, 1e-3)
	assert.InDelta(t, state.GPUs[0].InterconnectTx, tx, 1e-3)
}

func TestTick_downNodeFrozen(t *testing.T) {
	env := newTestEnv(t, 2, 2, 5)

	env.driver.Tick()

	_, err := env.registry.Fail("gpu-node-02")
	require.NoError(t, err)

	frozen, err := env.registry.Get("gpu-node-02")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		env.driver.Tick()
	}

	after, err := env.registry.Get("gpu-node-02")
	require.NoError(t, err)
	assert.Equal(t, frozen, after)

	samples := env.recorder.SamplesFor("gpu-node-02")
	last := samples[len(samples)-1]
	assert.False(t, last.State.Available())
	assert.Zero(t, last.Delta.NetworkRx)

	status := models.Summarize(env.registry.Snapshot())
	assert.Equal(t, 1, status.NodesDown)
	assert.Equal(t, 3, status.NodesUp)
}

func TestTick_drainResumeKeepsTicking(t *testing.T) {
	env := newTestEnv(t, 1, 1, 9)

	_, err := env.registry.Drain("cpu-node-01")
	require.NoError(t, err)

	env.driver.Tick()

	drained, err := env.registry.Get("cpu-node-01")
	require.NoError(t, err)
	assert.Equal(t, models.NodeStatusDraining, drained.Status)
	assert.Positive(t, drained.NetworkRx, "draining nodes keep ticking")

	_, err = env.registry.Resume("cpu-node-01")
	require.NoError(t, err)

	env.driver.Tick()

	resumed, err := env.registry.Get("cpu-node-01")
	require.NoError(t, err)
	assert.Equal(t, models.NodeStatusUp, resumed.Status)
	assert.Greater(t, resumed.NetworkRx, drained.NetworkRx)
}

func TestTick_smallCluster(t *testing.T) {
	env := newTestEnv(t, 2, 2, 21)

	env.driver.Tick()

	states := env.registry.Snapshot()
	require.Len(t, states, 4)

	status := models.Summarize(states)
	assert.Equal(t, 4, status.NodesUp)
	assert.Equal(t, 16, status.GPUsTotal)

	for _, state := range states {
		assert.True(t, state.Available())

		for _, gpu := range state.GPUs {
			assert.GreaterOrEqual(t, gpu.Temperature, 35.0)
			assert.LessOrEqual(t, gpu.Temperature, gpu.Spec.MaxTempC)
		}
	}
}

func TestTick_seededRunsMatch(t *testing.T) {
	first := newTestEnv(t, 2, 2, 42)
	second := newTestEnv(t, 2, 2, 42)

	for i := 0; i < 25; i++ {
		first.driver.Tick()
		second.driver.Tick()
	}

	assert.Equal(t, first.registry.Snapshot(), second.registry.Snapshot())
}

func TestTick_panicIsolatedToNode(t *testing.T) {
	env := newTestEnv(t, 2, 2, 13)

	before, err := env.registry.Get("gpu-node-02")
	require.NoError(t, err)

	env.driver.step = func(state *models.NodeState, rnd ports.Random) {
		if state.ID == "gpu-node-02" {
			state.CPUUtilization = 99
			panic("sensor exploded")
		}

		StepNode(state, rnd)
	}

	assert.Equal(t, 1, env.driver.Tick())

	after, err := env.registry.Get("gpu-node-02")
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed update keeps the last committed state")

	for _, id := range []string{"gpu-node-01", "cpu-node-01", "cpu-node-02"} {
		state, err := env.registry.Get(id)
		require.NoError(t, err)
		assert.Positive(t, state.NetworkRx, id)
	}

	ticks := env.recorder.Ticks()
	require.Len(t, ticks, 1)
	assert.Equal(t, 1, ticks[0].FailedNodes)

	require.NotNil(t, env.logs.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, env.logs.LastEntry().Level)
	assert.Equal(t, "gpu-node-02", env.logs.LastEntry().Data["node"])
}

func TestSnapshot_consistentDuringTicks(t *testing.T) {
	env := newTestEnv(t, 2, 2, 17)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := sync.WaitGroup{}

	wg.Add(1)

	go func() {
		defer wg.Done()

		for ctx.Err() == nil {
			env.driver.Tick()
		}
	}()

	for i := 0; i < 500; i++ {
		for _, state := range env.registry.Snapshot() {
			assert.InDelta(t, state.MemoryTotal*state.MemoryUtilization/100, state.MemoryUsed, 1)

			for _, gpu := range state.GPUs {
				assert.InDelta(t, gpu.Spec.MemoryMiB*gpu.MemoryUtilization/100, gpu.MemoryUsed, 1e-6)
			}
		}
	}

	cancel()
	wg.Wait()
}

func TestRun_ticksUntilCancelled(t *testing.T) {
	env := newTestEnv(t, 1, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- env.driver.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(env.recorder.Ticks()) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}

	nodes, gpus := env.recorder.TopologySize()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 8, gpus)
}

func TestStepGPU_throttlesWhenHot(t *testing.T) {
	spec := models.BuiltinSpecs()[1]
	gpu := models.NewGPU("gpu-node-01", 0, spec, spec.MaxTempC)

	StepGPU(&gpu, constRand{uniform: 0, normal: 2})

	assert.Greater(t, gpu.Temperature, 80.0)
	assert.InDelta(t, spec.BaseSMClock*0.9, gpu.SMClock, 1e-9)
	assert.InDelta(t, spec.BaseMemClock*0.9, gpu.MemClock, 1e-9)
	assert.Equal(t, 100.0, gpu.Utilization)
	assert.InDelta(t, spec.MaxPowerW, gpu.PowerUsage, 1e-9)
	assert.Equal(t, uint64(1), gpu.ECCErrors, "a zero draw is below the error probability")
}

func TestStepGPU_idleCoolsDown(t *testing.T) {
	spec := models.BuiltinSpecs()[0]
	gpu := models.NewGPU("gpu-node-01", 0, spec, 60)

	StepGPU(&gpu, constRand{uniform: 0.99, normal: 0})

	assert.InDelta(t, 19.8, gpu.Utilization, 1e-9)
	assert.Less(t, gpu.Temperature, 60.0)
	assert.Equal(t, spec.BaseSMClock, gpu.SMClock)
	assert.Zero(t, gpu.ECCErrors)
}

func TestNewRand_seedReproducible(t *testing.T) {
	a, b := NewRand(99), NewRand(99)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}

	assert.NotEqual(t, NewRand(1).Float64(), NewRand(2).Float64())
}

type constRand struct {
	uniform float64
	normal  float64
}

func (r constRand) Float64() float64     { return r.uniform }
func (r constRand) NormFloat64() float64 { return r.normal }

func TestRun_rejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		env := newTestEnv(t, 1, 1, 5)
		env.driver.cfg.Interval = interval

		err := env.driver.Run(context.Background())
		assert.ErrorIs(t, err, perrors.ErrInvalidTickInterval)
		assert.Empty(t, env.recorder.Ticks(), "no tick runs before the interval is checked")
	}
}
