package metrics

import (
	"sync"
	"time"

	"pulse-node/pkg/models"
	"pulse-node/pkg/ports"
)

// Recorder is an in-memory sink. It keeps everything it is given and is safe for
// concurrent use.
type Recorder struct {
	mu          sync.Mutex
	nodes       int
	gpus        int
	samples     []ports.NodeSample
	ticks       []TickRecord
	transitions []models.Transition
}

// TickRecord is one observed tick.
type TickRecord struct {
	Duration    time.Duration
	FailedNodes int
}

var _ ports.MetricsSink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Topology(nodes, gpus int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodes, r.gpus = nodes, gpus
}

func (r *Recorder) ObserveNode(sample ports.NodeSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, sample)
}

func (r *Recorder) ObserveTick(duration time.Duration, failedNodes int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticks = append(r.ticks, TickRecord{Duration: duration, FailedNodes: failedNodes})
}

func (r *Recorder) ObserveTransition(transition models.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transitions = append(r.transitions, transition)
}

// TopologySize returns the last recorded cluster size.
func (r *Recorder) TopologySize() (nodes, gpus int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.nodes, r.gpus
}

// Samples returns every node sample in the order received.
func (r *Recorder) Samples() []ports.NodeSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ports.NodeSample, len(r.samples))
	copy(out, r.samples)

	return out
}

// SamplesFor returns the samples of one node.
func (r *Recorder) SamplesFor(id string) []ports.NodeSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ports.NodeSample

	for _, sample := range r.samples {
		if sample.State.ID == id {
			out = append(out, sample)
		}
	}

	return out
}

func (r *Recorder) Ticks() []TickRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TickRecord, len(r.ticks))
	copy(out, r.ticks)

	return out
}

func (r *Recorder) Transitions() []models.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Transition, len(r.transitions))
	copy(out, r.transitions)

	return out
}
