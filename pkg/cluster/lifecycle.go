package cluster

import (
	"fmt"

	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/models"
)

// nextStatus is the lifecycle state machine. Requests that do not apply to the current
// status are accepted and leave it unchanged.
//
//	drain:   up -> draining
//	resume:  draining -> up
//	fail:    up, draining -> down
//	recover: down -> up
func nextStatus(action models.LifecycleAction, from models.NodeStatus) models.NodeStatus {
	switch action {
	case models.ActionDrain:
		if from == models.NodeStatusUp {
			return models.NodeStatusDraining
		}
	case models.ActionResume:
		if from == models.NodeStatusDraining {
			return models.NodeStatusUp
		}
	case models.ActionFail:
		return models.NodeStatusDown
	case models.ActionRecover:
		if from == models.NodeStatusDown {
			return models.NodeStatusUp
		}
	}

	return from
}

// Apply runs a lifecycle action against the node with the given id. Only that node's lock
// is taken.
func (r *Registry) Apply(id string, action models.LifecycleAction) (models.Transition, error) {
	switch action {
	case models.ActionDrain, models.ActionResume, models.ActionFail, models.ActionRecover:
	default:
		return models.Transition{}, fmt.Errorf("%w: %q", perrors.ErrUnknownAction, action)
	}

	node, err := r.Node(id)
	if err != nil {
		return models.Transition{}, err
	}

	return node.apply(action), nil
}

// Drain asks for the node to be taken out of service.
func (r *Registry) Drain(id string) (models.Transition, error) {
	return r.Apply(id, models.ActionDrain)
}

// Resume returns a draining node to service.
func (r *Registry) Resume(id string) (models.Transition, error) {
	return r.Apply(id, models.ActionResume)
}

// Fail forces the node down.
func (r *Registry) Fail(id string) (models.Transition, error) {
	return r.Apply(id, models.ActionFail)
}

// Recover brings a down node back up.
func (r *Registry) Recover(id string) (models.Transition, error) {
	return r.Apply(id, models.ActionRecover)
}
