package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pulse-node/pkg/cluster"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

// Config holds the driver settings.
type Config struct {
	// Interval is the period between ticks.
	Interval time.Duration
}

// Driver is the only writer of the nodes' volatile readings. It advances every node by one
// tick per interval.
type Driver struct {
	cfg      *Config
	registry *cluster.Registry
	sink     ports.MetricsSink
	rnd      ports.Random
	clock    func() time.Time
	logger   *logrus.Entry

	// tickMu serialises ticks; rnd is not safe for concurrent use.
	tickMu sync.Mutex
	step   func(state *models.NodeState, rnd ports.Random)
}

// NewDriver creates a driver over the registry. All randomness comes from rnd, so a seeded
// source replays the same sequence of states.
func NewDriver(cfg *Config, registry *cluster.Registry, coll *ports.Collection, logger *logrus.Entry) *Driver {
	clock := coll.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Driver{
		cfg:      cfg,
		registry: registry,
		sink:     coll.Sink,
		rnd:      coll.Random,
		clock:    clock,
		logger:   logger.WithField("component", "simulator"),
		step:     StepNode,
	}
}

// Run ticks once immediately and then once per interval until ctx is cancelled. A tick in
// progress always completes.
func (d *Driver) Run(ctx context.Context) error {
	if d.cfg.Interval <= 0 {
		return fmt.Errorf("%w, got %s", perrors.ErrInvalidTickInterval, d.cfg.Interval)
	}

	d.sink.Topology(d.registry.Len(), d.registry.GPUCount())

	d.logger.WithFields(logrus.Fields{
		"nodes":    d.registry.Len(),
		"gpus":     d.registry.GPUCount(),
		"interval": d.cfg.Interval,
	}).Info("starting simulation driver")

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	d.Tick()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("stopping simulation driver")

			return nil
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick advances every node by exactly one step, in registry order, and returns the number
// of nodes whose update failed. A failed node keeps its last committed state and does not
// stop the others.
func (d *Driver) Tick() int {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	started := d.clock()
	failed := 0

	for _, node := range d.registry.Nodes() {
		var catcher panics.Catcher

		catcher.Try(func() { d.tickNode(node) })

		if recovered := catcher.Recovered(); recovered != nil {
			failed++

			d.logger.WithField("node", node.ID()).
				WithError(recovered.AsError()).
				Error("node update failed, keeping last committed state")
		}
	}

	d.sink.ObserveTick(d.clock().Sub(started), failed)

	return failed
}

func (d *Driver) tickNode(node *cluster.Node) {
	prev, next := node.Commit(func(state *models.NodeState) {
		if !state.Available() {
			return
		}

		d.step(state, d.rnd)
	})

	for i := range next.GPUs {
		if next.GPUs[i].ECCErrors > prev.GPUs[i].ECCErrors {
			d.logger.WithFields(logrus.Fields{
				"node":         next.ID,
				"gpu":          next.GPUs[i].Index,
				"total_errors": next.GPUs[i].ECCErrors,
			}).Warn("ECC error detected")
		}
	}

	d.sink.ObserveNode(ports.NodeSample{
		State: next,
		Delta: counterDelta(prev, next),
	})
}

// counterDelta returns how far each cumulative counter moved between two states of the
// same node.
func counterDelta(prev, next models.NodeState) ports.NodeDelta {
	delta := ports.NodeDelta{
		NetworkRx: next.NetworkRx - prev.NetworkRx,
		NetworkTx: next.NetworkTx - prev.NetworkTx,
	}

	if len(next.GPUs) == 0 {
		return delta
	}

	delta.GPUs = make([]ports.GPUDelta, len(next.GPUs))
	for i := range next.GPUs {
		delta.GPUs[i] = ports.GPUDelta{
			ECCErrors:      next.GPUs[i].ECCErrors - prev.GPUs[i].ECCErrors,
			InterconnectTx: next.GPUs[i].InterconnectTx - prev.GPUs[i].InterconnectTx,
			InterconnectRx: next.GPUs[i].InterconnectRx - prev.GPUs[i].InterconnectRx,
		}
	}

	return delta
}
