package app

import (
	"context"
	"fmt"

	"pulse-node/pkg/log"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"
)

type Config struct {
	// EnableFaultInjection allows the fail and recover actions.
	EnableFaultInjection bool
}

type App struct {
	cfg   *Config
	ports *ports.Collection
}

var _ ports.ClusterService = (*App)(nil)

func New(cfg *Config, ports *ports.Collection) *App {
	return &App{
		cfg:   cfg,
		ports: ports,
	}
}

// Nodes implements ports.ClusterService.
func (a *App) Nodes(ctx context.Context) []models.NodeState {
	return a.ports.Repo.Snapshot()
}

// Node implements ports.ClusterService.
func (a *App) Node(ctx context.Context, id string) (models.NodeState, error) {
	if err := models.ValidateNodeID(id); err != nil {
		return models.NodeState{}, err
	}

	state, err := a.ports.Repo.Get(id)
	if err != nil {
		return models.NodeState{}, fmt.Errorf("getting node: %w", err)
	}

	return state, nil
}

// Status implements ports.ClusterService.
func (a *App) Status(ctx context.Context) models.ClusterStatus {
	logger := log.GetLogger(ctx).WithField("action", "status")

	status := models.Summarize(a.ports.Repo.Snapshot())

	logger.Debugf("cluster status: %d/%d nodes up, %d/%d gpus active",
		status.NodesUp, status.NodesTotal, status.GPUsActive, status.GPUsTotal)

	return status
}
