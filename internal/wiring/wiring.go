// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/rex/internal/adapters/cas"
	_ "go.trai.ch/rex/internal/adapters/config"
	_ "go.trai.ch/rex/internal/adapters/fs"
	_ "go.trai.ch/rex/internal/adapters/logger"
	_ "go.trai.ch/rex/internal/adapters/runner"
	_ "go.trai.ch/rex/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/rex/internal/app"
	_ "go.trai.ch/rex/internal/engine/scheduler"
)
