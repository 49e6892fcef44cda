package inject

import (
	"fmt"
	"time"

	"pulse-node/internal/config"
	"pulse-node/pkg/app"
	"pulse-node/pkg/cluster"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/metrics"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"
	"pulse-node/pkg/simulator"

	"github.com/spf13/afero"
)

// Simulation is the assembled simulator core.
type Simulation struct {
	Registry *cluster.Registry
	Sink     *metrics.PrometheusSink
	Driver   *simulator.Driver
	App      *app.App
}

func modelTable(cfg *config.Config, fs afero.Fs) (*models.ModelTable, error) {
	table, err := models.LoadModelTable(fs, cfg.GPUModelsFile)
	if err != nil {
		return nil, fmt.Errorf("loading gpu models: %w", err)
	}

	return table, nil
}

func topology(cfg *config.Config) cluster.Topology {
	return cluster.Topology{
		GPUNodes:    cfg.GPUNodes,
		CPUNodes:    cfg.CPUNodes,
		GPUsPerNode: cfg.GPUsPerNode,
		GPUModels:   cfg.GPUModels,
	}
}

func randomSource(cfg *config.Config) ports.Random {
	return simulator.NewRand(cfg.Seed)
}

func appPorts(registry *cluster.Registry, sink ports.MetricsSink, rnd ports.Random) *ports.Collection {
	return &ports.Collection{
		Repo:   registry,
		Sink:   sink,
		Random: rnd,
		Clock:  time.Now,
	}
}

func driverConfig(cfg *config.Config) (*simulator.Config, error) {
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("%w, got %s", perrors.ErrInvalidTickInterval, cfg.TickInterval)
	}

	return &simulator.Config{
		Interval: cfg.TickInterval,
	}, nil
}

func appConfig(cfg *config.Config) *app.Config {
	return &app.Config{
		EnableFaultInjection: cfg.EnableFaultInjection,
	}
}
