package app

import (
	"context"
	"fmt"

	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/log"
	"pulse-node/pkg/models"

	"github.com/sirupsen/logrus"
)

// Apply implements ports.ClusterService. Fault injection actions are refused unless enabled.
func (a *App) Apply(ctx context.Context, id string, action models.LifecycleAction) (models.Transition, error) {
	logger := log.GetLogger(ctx).WithFields(logrus.Fields{
		"action": action,
		"node":   id,
	})

	if err := models.ValidateNodeID(id); err != nil {
		return models.Transition{}, err
	}

	if action.IsFaultInjection() && !a.cfg.EnableFaultInjection {
		return models.Transition{}, perrors.ErrFaultInjectionDisabled
	}

	transition, err := a.ports.Repo.Apply(id, action)
	if err != nil {
		return models.Transition{}, fmt.Errorf("applying %s: %w", action, err)
	}

	a.ports.Sink.ObserveTransition(transition)

	if transition.Changed {
		logger.Infof("node status changed from %s to %s", transition.From, transition.To)
	} else {
		logger.Debugf("node already %s, nothing to do", transition.To)
	}

	return transition, nil
}

// Drain takes the node out of service.
func (a *App) Drain(ctx context.Context, id string) (models.Transition, error) {
	return a.Apply(ctx, id, models.ActionDrain)
}

// Resume returns a draining node to service.
func (a *App) Resume(ctx context.Context, id string) (models.Transition, error) {
	return a.Apply(ctx, id, models.ActionResume)
}
