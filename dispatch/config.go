// Package dispatch provides a goroutine-backed implementation of the
// core.Scheduler capability: a priority worker pool plus a dedicated
// serialized main context, with delayed execution on both.
package dispatch

import "github.com/averau/go-native-executor/core"

// Config holds the injectable collaborators of a Dispatcher.
// All fields are optional; nil fields fall back to defaults.
type Config struct {
	// PanicHandler is called when a closure panics. Defaults to
	// core.DefaultPanicHandler.
	PanicHandler core.PanicHandler

	// Metrics receives execution metrics. Defaults to core.NilMetrics.
	Metrics core.Metrics

	// RejectedTaskHandler is called when a submission is refused.
	// Defaults to core.DefaultRejectedTaskHandler.
	RejectedTaskHandler core.RejectedTaskHandler

	// Logger receives lifecycle messages. Defaults to core.DefaultLogger.
	Logger core.Logger
}

// DefaultConfig returns a config with default collaborators.
func DefaultConfig() *Config {
	return &Config{
		PanicHandler:        &core.DefaultPanicHandler{},
		Metrics:             &core.NilMetrics{},
		RejectedTaskHandler: &core.DefaultRejectedTaskHandler{},
		Logger:              core.NewDefaultLogger(),
	}
}

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.PanicHandler == nil {
		out.PanicHandler = &core.DefaultPanicHandler{}
	}
	if out.Metrics == nil {
		out.Metrics = &core.NilMetrics{}
	}
	if out.RejectedTaskHandler == nil {
		out.RejectedTaskHandler = &core.DefaultRejectedTaskHandler{}
	}
	if out.Logger == nil {
		out.Logger = core.NewDefaultLogger()
	}
	return out
}
