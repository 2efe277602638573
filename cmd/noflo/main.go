// Package main implements the noflo command: it loads a graph
// definition, builds the builtin component registry and runs the flow
// network to completion with graceful signal-driven shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/components"
	"github.com/HondryTravis/noflo/graph"
	"github.com/HondryTravis/noflo/metric"
	"github.com/HondryTravis/noflo/network"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "noflo"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	g, err := graph.LoadFile(cliCfg.GraphPath)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	registry := component.NewRegistry()
	if err := components.Register(registry); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	if cliCfg.Validate {
		snap := g.Snapshot()
		for _, node := range snap.Nodes {
			if _, err := registry.Resolve(node.Component); err != nil {
				return fmt.Errorf("validate graph: node %q: %w", node.ID, err)
			}
		}
		slog.Info("Graph definition is valid",
			"graph", g.Name(),
			"nodes", len(snap.Nodes),
			"edges", len(snap.Edges),
			"initials", len(snap.Initials))
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()
	n, err := buildNetwork(cliCfg, g, registry, logger, metricsRegistry)
	if err != nil {
		return fmt.Errorf("build network: %w", err)
	}

	return runWithSignalHandling(cliCfg, n, metricsRegistry)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting noflo network runtime",
		"version", Version,
		"build_time", BuildTime,
		"graph_path", cliCfg.GraphPath)

	return cliCfg, logger, false, nil
}

// buildNetwork assembles network options from CLI configuration. The
// network is created delayed so lifecycle subscriptions are registered
// before anything runs.
func buildNetwork(
	cliCfg *CLIConfig,
	g *graph.Graph,
	registry *component.Registry,
	logger *slog.Logger,
	metricsRegistry *metric.MetricsRegistry,
) (*network.Network, error) {
	opts := []network.Option{
		network.WithDelay(),
		network.WithLogger(logger),
		network.WithMetricsRegistry(metricsRegistry),
		network.WithStopTimeout(cliCfg.StopTimeout),
	}
	if cliCfg.Strict {
		opts = append(opts, network.WithStrictBackpressure())
	}
	if cliCfg.ChannelCapacity > 0 {
		opts = append(opts, network.WithChannelCapacity(cliCfg.ChannelCapacity))
	}
	if cliCfg.Workers > 0 {
		opts = append(opts, network.WithWorkers(cliCfg.Workers))
	}

	name := g.Name()
	if name == "" {
		base := filepath.Base(cliCfg.GraphPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return network.New(name, g, registry, opts...)
}

// runWithSignalHandling starts the network and runs until it finishes
// or a shutdown signal arrives. The metrics server, when enabled, runs
// alongside and is torn down with everything else.
func runWithSignalHandling(cliCfg *CLIConfig, n *network.Network, metricsRegistry *metric.MetricsRegistry) error {
	finished := make(chan error, 1)
	n.OnNetworkEnded(func(err error) {
		select {
		case finished <- err:
		default:
		}
	})

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	group, groupCtx := errgroup.WithContext(signalCtx)
	if cliCfg.MetricsPort > 0 {
		server := metric.NewServer(cliCfg.MetricsPort, "/metrics", metricsRegistry)
		slog.Info("Metrics server listening", "address", server.Address())
		group.Go(server.Start)
		group.Go(func() error {
			<-groupCtx.Done()
			return server.Stop()
		})
	}

	if err := n.Start(); err != nil {
		signalCancel()
		_ = group.Wait()
		return fmt.Errorf("start network: %w", err)
	}
	slog.Info("Network running", "network", n.Name())

	var endErr error
	select {
	case endErr = <-finished:
		if endErr != nil {
			slog.Error("Network errored", "error", endErr)
		} else {
			slog.Info("Network finished")
			if cliCfg.Serve {
				slog.Info("Serving until shutdown signal")
				select {
				case endErr = <-finished:
				case <-signalCtx.Done():
				}
			}
		}
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	}

	stopErr := n.Stop()
	logStats(n)

	signalCancel()
	if err := group.Wait(); err != nil {
		slog.Warn("Metrics server shutdown", "error", err)
	}

	if endErr != nil {
		return endErr
	}
	return stopErr
}

func logStats(n *network.Network) {
	stats := n.Stats()
	slog.Info("Network stopped",
		"status", stats.Status,
		"components", stats.Components,
		"channels", stats.Channels,
		"activations", stats.Activations,
		"packets_dropped", stats.PacketsDropped)
}
