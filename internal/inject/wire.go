//go:build wireinject
// +build wireinject

package inject

import (
	"pulse-node/internal/config"
	"pulse-node/pkg/app"
	"pulse-node/pkg/cluster"
	"pulse-node/pkg/metrics"
	"pulse-node/pkg/ports"
	"pulse-node/pkg/simulator"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func InitializeSimulation(
	cfg *config.Config,
	fs afero.Fs,
	registerer prometheus.Registerer,
	logger *logrus.Entry,
) (*Simulation, error) {
	wire.Build(
		modelTable,
		topology,
		randomSource,
		cluster.NewRegistry,
		metrics.NewPrometheusSink,
		wire.Bind(new(ports.MetricsSink), new(*metrics.PrometheusSink)),
		appPorts,
		driverConfig,
		simulator.NewDriver,
		appConfig,
		app.New,
		wire.Struct(new(Simulation), "*"),
	)

	return nil, nil
}
