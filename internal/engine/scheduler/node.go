package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rex/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rex/internal/adapters/config"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rex/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rex/internal/adapters/runner"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rex/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			runner.NodeID,
			cas.NodeID,
			fs.NodeID,
			progrock.NodeID,
			config.OptionsNodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.NodeExecutor](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.StampStore](ctx)
			if err != nil {
				return nil, err
			}

			lister, err := graft.Dep[ports.ListingResolver](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			opts, err := graft.Dep[domain.Options](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(executor, store, lister, telemetry, opts), nil
		},
	})
}
