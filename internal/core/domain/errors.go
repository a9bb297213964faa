package domain

import "errors"

// Sentinels are plain errors so they survive zerr wrapping: zerr keeps
// a standard error as the cause, which errors.Is can reach.
var (
	// ErrNodeAlreadyExists is returned when attempting to add a node with a name that already exists.
	ErrNodeAlreadyExists = errors.New("node already exists")

	// ErrNotAFileNode is returned when a path resolves to a node that cannot produce a file.
	ErrNotAFileNode = errors.New("node is not a file node")

	// ErrMissingDependency is returned when a target references a pre-build dependency that doesn't exist.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the node dependency graph.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrTargetNotFound is returned when a requested target is not found in the graph.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNoTargetsSpecified is returned when a run is requested without any targets.
	ErrNoTargetsSpecified = errors.New("no targets specified")

	// ErrBuildExecutionFailed is returned when one or more targets failed to build.
	ErrBuildExecutionFailed = errors.New("build execution failed")

	// ErrBuildAborted is returned when a build was cancelled rather than failed.
	ErrBuildAborted = errors.New("build aborted")
)
