package ports

import (
	"context"

	"go.trai.ch/rex/internal/core/domain"
)

// NodeExecutor runs one build invocation of an exec node.
//
// A nil return means the target built successfully (and its stamp was
// refreshed). Failures wrap domain.ErrBuildExecutionFailed; a cancelled
// run wraps domain.ErrBuildAborted so callers can tell "build failed"
// from "build was cancelled".
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type NodeExecutor interface {
	Execute(ctx context.Context, node *domain.ExecNode) error
}
