package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records per-target progress.
type Telemetry interface {
	// Record starts recording a new vertex for the named target.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work. Its writers are the
// output sink for captured command output.
type Vertex interface {
	// Stdout returns a writer for the target's standard output stream.
	Stdout() io.Writer
	// Stderr returns a writer for the target's error output stream.
	Stderr() io.Writer
	// Cached marks the vertex as up to date without execution.
	Cached()
	// Complete marks the vertex as finished, with err nil on success.
	Complete(err error)
}

type vertexContextKey struct{}

// ContextWithVertex attaches a vertex to the context.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexContextKey{}, v)
}

// VertexFromContext returns the vertex attached to the context, or nil.
func VertexFromContext(ctx context.Context) Vertex {
	v, _ := ctx.Value(vertexContextKey{}).(Vertex)
	return v
}
