package ports

import "time"

// Collection holds the ports the application is assembled from.
type Collection struct {
	Repo   NodeRepository
	Sink   MetricsSink
	Random Random
	Clock  func() time.Time
}
