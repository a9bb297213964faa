// Package app implements the application layer for rex.
package app

import (
	"context"

	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/rex/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// RunOptions controls one build invocation.
type RunOptions struct {
	// Force rebuilds the requested targets regardless of their stamps.
	Force bool
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	telemetry    ports.Telemetry
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, sched *scheduler.Scheduler, telemetry ports.Telemetry) *App {
	return &App{
		configLoader: loader,
		scheduler:    sched,
		telemetry:    telemetry,
	}
}

// Run executes the build for the specified targets.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	graph, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	return a.scheduler.Run(ctx, graph, targetNames, opts.Force)
}

// Close flushes and closes the telemetry session.
func (a *App) Close() error {
	return a.telemetry.Close()
}
