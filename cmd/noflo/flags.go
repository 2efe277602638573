package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	GraphPath       string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	Strict          bool
	Serve           bool
	ChannelCapacity int
	Workers         int
	StopTimeout     time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.GraphPath, "graph",
		getEnv("NOFLO_GRAPH", ""),
		"Path to graph definition file, .json or .yaml (env: NOFLO_GRAPH)")

	flag.StringVar(&cfg.GraphPath, "g",
		getEnv("NOFLO_GRAPH", ""),
		"Path to graph definition file, .json or .yaml (env: NOFLO_GRAPH)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("NOFLO_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: NOFLO_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("NOFLO_LOG_FORMAT", "json"),
		"Log format: json, text (env: NOFLO_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("NOFLO_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: NOFLO_METRICS_PORT)")

	flag.BoolVar(&cfg.Strict, "strict",
		getEnvBool("NOFLO_STRICT", false),
		"Strict backpressure: fail sends past channel capacity (env: NOFLO_STRICT)")

	flag.BoolVar(&cfg.Serve, "serve",
		getEnvBool("NOFLO_SERVE", false),
		"Keep running after the network finishes, until a signal arrives (env: NOFLO_SERVE)")

	flag.IntVar(&cfg.ChannelCapacity, "channel-capacity",
		getEnvInt("NOFLO_CHANNEL_CAPACITY", 0),
		"Per-channel buffer capacity, 0 for default (env: NOFLO_CHANNEL_CAPACITY)")

	flag.IntVar(&cfg.Workers, "workers",
		getEnvInt("NOFLO_WORKERS", 0),
		"Activation worker count, 0 for default (env: NOFLO_WORKERS)")

	flag.DurationVar(&cfg.StopTimeout, "stop-timeout",
		getEnvDuration("NOFLO_STOP_TIMEOUT", 10*time.Second),
		"Graceful stop timeout (env: NOFLO_STOP_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate the graph definition and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.GraphPath == "" {
		return fmt.Errorf("no graph definition given, use --graph")
	}
	if _, err := os.Stat(cfg.GraphPath); err != nil {
		return fmt.Errorf("graph definition not found: %s", cfg.GraphPath)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	if cfg.ChannelCapacity < 0 {
		return fmt.Errorf("invalid channel capacity: %d", cfg.ChannelCapacity)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", cfg.Workers)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - flow-based network runtime

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run a graph to completion
  %s --graph=examples/pipeline.json

  # Run with strict backpressure and debug logging
  %s --graph=pipeline.yaml --strict --log-level=debug --log-format=text

  # Run with environment variables
  export NOFLO_GRAPH=/etc/noflo/pipeline.json
  export NOFLO_METRICS_PORT=9090
  %s

  # Validate a graph definition only
  %s --graph=pipeline.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
