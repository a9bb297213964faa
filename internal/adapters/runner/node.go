package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rex/internal/adapters/cas"
	"go.trai.ch/rex/internal/adapters/config"
	"go.trai.ch/rex/internal/adapters/logger"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
)

const NodeID graft.ID = "adapter.node_executor"

func init() {
	graft.Register(graft.Node[ports.NodeExecutor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, cas.NodeID, config.OptionsNodeID},
		Run: func(ctx context.Context) (ports.NodeExecutor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.StampStore](ctx)
			if err != nil {
				return nil, err
			}
			opts, err := graft.Dep[domain.Options](ctx)
			if err != nil {
				return nil, err
			}
			return NewDriver(log, store, opts), nil
		},
	})
}
