package cas

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/rex/internal/core/ports"
)

const NodeID graft.ID = "adapter.stamp_store"

// DefaultStoreDir is the working-tree directory holding build state.
const DefaultStoreDir = ".rex"

func init() {
	graft.Register(graft.Node[ports.StampStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.StampStore, error) {
			store, err := NewStore(filepath.Join(DefaultStoreDir, "stamps.json"))
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
