package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rex/internal/core/ports"
)

const NodeID graft.ID = "adapter.lister"

func init() {
	graft.Register(graft.Node[ports.ListingResolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ListingResolver, error) {
			return NewLister(), nil
		},
	})
}
