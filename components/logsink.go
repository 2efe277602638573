package components

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
)

// LogSinkConfig holds configuration for the LogSink component.
type LogSinkConfig struct {
	// Level is the slog level name packets are logged at. Default "info".
	Level string `json:"level,omitempty"`
	// Label is included with every log record to tell sinks apart.
	Label string `json:"label,omitempty"`
}

// LogSink terminates a stream by logging every received packet.
type LogSink struct {
	config LogSinkConfig
	level  slog.Level
	logger *slog.Logger
}

// NewLogSink creates a LogSink component from configuration.
func NewLogSink(rawConfig json.RawMessage, deps component.Dependencies) (component.Component, error) {
	var config LogSinkConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.WrapInvalid(err, "LogSink", "NewLogSink", "config unmarshal")
	}

	level := slog.LevelInfo
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			return nil, errors.WrapInvalid(err, "LogSink", "NewLogSink", "level parsing")
		}
	}

	return &LogSink{
		config: config,
		level:  level,
		logger: deps.GetLoggerWithComponent("core/LogSink"),
	}, nil
}

// Name returns the component type name.
func (c *LogSink) Name() string { return "core/LogSink" }

// Definition declares the single input port.
func (c *LogSink) Definition() component.Definition {
	return component.Definition{
		Description: "logs received packets",
		InPorts: []component.Port{
			{Name: "in", Description: "packets to log", Required: true},
		},
	}
}

// Activate logs every buffered packet.
func (c *LogSink) Activate(ctx context.Context, ac *component.ActivationContext) error {
	for {
		p, ok := ac.Receive("in")
		if !ok {
			return nil
		}
		c.logger.Log(ctx, c.level, "packet received",
			"label", c.config.Label,
			"kind", p.Kind().String(),
			"scope", p.Scope(),
			"payload", p.Payload())
	}
}
