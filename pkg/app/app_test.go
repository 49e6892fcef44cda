package app_test

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"pulse-node/pkg/app"
	"pulse-node/pkg/cluster"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/metrics"
	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"

	g "github.com/onsi/gomega"
)

func newTestApp(t *testing.T, faultInjection bool) (*app.App, *metrics.Recorder) {
	t.Helper()

	registry, err := cluster.NewRegistry(models.DefaultModelTable(), cluster.DefaultTopology(2, 2), rand.New(rand.NewPCG(4, 2)))
	g.Expect(err).NotTo(g.HaveOccurred())

	recorder := metrics.NewRecorder()

	return app.New(&app.Config{EnableFaultInjection: faultInjection}, &ports.Collection{
		Repo: registry,
		Sink: recorder,
	}), recorder
}

func TestApp_queries(t *testing.T) {
	g.RegisterTestingT(t)

	svc, _ := newTestApp(t, false)
	ctx := context.Background()

	g.Expect(svc.Nodes(ctx)).To(g.HaveLen(4))

	node, err := svc.Node(ctx, "cpu-node-02")
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(node.Class).To(g.Equal(models.NodeClassCPU))

	_, err = svc.Node(ctx, "cpu-node-03")
	g.Expect(perrors.IsNodeNotFound(err)).To(g.BeTrue())

	_, err = svc.Node(ctx, "")
	g.Expect(err).To(g.MatchError(perrors.ErrNodeIDRequired))

	status := svc.Status(ctx)
	g.Expect(status.NodesTotal).To(g.Equal(4))
	g.Expect(status.NodesUp).To(g.Equal(4))
	g.Expect(status.GPUsTotal).To(g.Equal(16))
	g.Expect(status.GPUsActive).To(g.BeZero())
}

func TestApp_drainResume(t *testing.T) {
	g.RegisterTestingT(t)

	svc, recorder := newTestApp(t, false)
	ctx := context.Background()

	transition, err := svc.Drain(ctx, "gpu-node-01")
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(transition.Changed).To(g.BeTrue())
	g.Expect(svc.Status(ctx).NodesDraining).To(g.Equal(1))

	transition, err = svc.Resume(ctx, "gpu-node-01")
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(transition.To).To(g.Equal(models.NodeStatusUp))

	g.Expect(recorder.Transitions()).To(g.HaveLen(2))

	_, err = svc.Drain(ctx, "gpu-node-42")
	g.Expect(perrors.IsNodeNotFound(err)).To(g.BeTrue())
	g.Expect(recorder.Transitions()).To(g.HaveLen(2))
}

func TestApp_faultInjectionGate(t *testing.T) {
	g.RegisterTestingT(t)

	ctx := context.Background()

	disabled, _ := newTestApp(t, false)
	_, err := disabled.Apply(ctx, "gpu-node-01", models.ActionFail)
	g.Expect(err).To(g.MatchError(perrors.ErrFaultInjectionDisabled))
	g.Expect(disabled.Status(ctx).NodesDown).To(g.BeZero())

	enabled, _ := newTestApp(t, true)
	transition, err := enabled.Apply(ctx, "gpu-node-01", models.ActionFail)
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(transition.To).To(g.Equal(models.NodeStatusDown))
	g.Expect(enabled.Status(ctx).NodesDown).To(g.Equal(1))

	transition, err = enabled.Apply(ctx, "gpu-node-01", models.ActionRecover)
	g.Expect(err).NotTo(g.HaveOccurred())
	g.Expect(transition.To).To(g.Equal(models.NodeStatusUp))
}

func TestApp_unknownAction(t *testing.T) {
	g.RegisterTestingT(t)

	svc, _ := newTestApp(t, true)

	_, err := svc.Apply(context.Background(), "gpu-node-01", models.LifecycleAction("reboot"))
	g.Expect(err).To(g.MatchError(g.ContainSubstring("unknown lifecycle action")))
}

func TestApp_rejectsInvalidNodeIDs(t *testing.T) {
	g.RegisterTestingT(t)

	svc, recorder := newTestApp(t, true)
	ctx := context.Background()

	for _, id := range []string{"gpu-node-01/../x", "gpu node 01", "gpu-node-01;drop", strings.Repeat("n", models.MaxNodeIDLen+1)} {
		_, err := svc.Node(ctx, id)
		g.Expect(err).To(g.MatchError(perrors.ErrInvalidNodeID), id)

		_, err = svc.Apply(ctx, id, models.ActionDrain)
		g.Expect(err).To(g.MatchError(perrors.ErrInvalidNodeID), id)
	}

	_, err := svc.Apply(ctx, "", models.ActionDrain)
	g.Expect(err).To(g.MatchError(perrors.ErrNodeIDRequired))

	g.Expect(recorder.Transitions()).To(g.BeEmpty())
}
