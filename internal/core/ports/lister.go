package ports

import "go.trai.ch/rex/internal/core/domain"

// ListingResolver enumerates the filesystem contents described by a
// directory scan specification.
//
//go:generate go run go.uber.org/mock/mockgen -source=lister.go -destination=mocks/mock_lister.go -package=mocks
type ListingResolver interface {
	// Resolve returns the matching file paths in deterministic walk order.
	Resolve(spec domain.DirScanSpec) ([]string, error)
}
