package ports

import "go.trai.ch/rex/internal/core/domain"

// StampStore persists build stamps so staleness can be decided across runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StampStore interface {
	// Get retrieves the stamp recorded for a target.
	// Returns nil, nil if not found.
	Get(targetName string) (*domain.BuildStamp, error)

	// Record stamps the artifact at the given path and persists the result.
	Record(targetName, artifactPath string) (domain.BuildStamp, error)

	// UpToDate reports whether the artifact still matches its recorded stamp.
	// A missing stamp or missing artifact means stale.
	UpToDate(targetName, artifactPath string) (bool, error)
}
