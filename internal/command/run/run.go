package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	cmdflags "pulse-node/internal/command/flags"
	"pulse-node/internal/config"
	"pulse-node/internal/inject"
	"pulse-node/pkg/api"
	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/flags"
	"pulse-node/pkg/grpcserver"
	"pulse-node/pkg/log"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

func NewCommand(cfg *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cluster simulator",
		PreRunE: func(c *cobra.Command, _ []string) error {
			flags.BindCommandToViper(c)

			return validate(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	cmdflags.AddClusterFlagsToCommand(cmd, cfg)
	cmdflags.AddSimulationFlagsToCommand(cmd, cfg)

	if err := cmdflags.AddServerFlagsToCommand(cmd, cfg); err != nil {
		return nil, fmt.Errorf("adding server flags to run command: %w", err)
	}

	return cmd, nil
}

func validate(cfg *config.Config) error {
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("%w, got %s", perrors.ErrInvalidTickInterval, cfg.TickInterval)
	}

	if cfg.HTTPAPIEndpoint == "" {
		return errors.New("http endpoint is required")
	}

	if !cfg.DisableGRPC && cfg.GRPCAPIEndpoint == "" {
		return errors.New("grpc endpoint is required unless grpc is disabled")
	}

	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	instance := uuid.NewString()
	logger := log.GetLogger(ctx).WithField("instance", instance)

	logger.WithFields(logrus.Fields{
		"gpu_nodes":     cfg.GPUNodes,
		"cpu_nodes":     cfg.CPUNodes,
		"gpus_per_node": cfg.GPUsPerNode,
		"http":          cfg.HTTPAPIEndpoint,
	}).Info("starting pulse node simulator")

	ctx, cancel := signal.NotifyContext(log.WithLogger(ctx, logger), os.Interrupt, unix.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sim, err := inject.InitializeSimulation(cfg, afero.NewOsFs(), registry, logger)
	if err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}

	httpServer := api.NewClusterAPI(sim.App, registry, instance, logger).NewServer(cfg.HTTPAPIEndpoint)

	var grpcServer *grpcserver.Server

	if !cfg.DisableGRPC {
		grpcServer, err = grpcserver.New(registry, logger)
		if err != nil {
			return fmt.Errorf("creating grpc server: %w", err)
		}
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return sim.Driver.Run(ctx)
	})

	group.Go(func() error {
		return serveHTTP(ctx, cfg, httpServer)
	})

	if grpcServer != nil {
		group.Go(func() error {
			return grpcServer.ListenAndServe(ctx, cfg.GRPCAPIEndpoint)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("finished all tasks, exiting")

	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, server *http.Server) error {
	logger := log.GetLogger(ctx)

	serveErr := make(chan error, 1)

	go func() {
		logger.Infof("starting HTTP server on %s", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("failed to serve http: %w", err)

			return
		}

		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	return multierr.Combine(server.Shutdown(shutdownCtx), <-serveErr)
}
