// Package scheduler drives a build: it resolves directory listings,
// runs the dynamic dependency pass, and executes stale targets in
// dependency order with bounded parallelism.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// TargetStatus represents the status of a target.
type TargetStatus string

const (
	// StatusPending indicates the target is waiting to be executed.
	StatusPending TargetStatus = "Pending"
	// StatusRunning indicates the target is currently executing.
	StatusRunning TargetStatus = "Running"
	// StatusCompleted indicates the target was built successfully.
	StatusCompleted TargetStatus = "Completed"
	// StatusFailed indicates the target execution failed.
	StatusFailed TargetStatus = "Failed"
	// StatusUpToDate indicates the target was skipped, its artifact
	// still matching the recorded stamp.
	StatusUpToDate TargetStatus = "UpToDate"
	// StatusAborted indicates the target was cancelled mid-run.
	StatusAborted TargetStatus = "Aborted"
)

// Scheduler manages the execution of exec nodes in the build graph.
type Scheduler struct {
	executor  ports.NodeExecutor
	store     ports.StampStore
	lister    ports.ListingResolver
	telemetry ports.Telemetry
	opts      domain.Options

	mu     sync.RWMutex
	status map[domain.InternedString]TargetStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	executor ports.NodeExecutor,
	store ports.StampStore,
	lister ports.ListingResolver,
	telemetry ports.Telemetry,
	opts domain.Options,
) *Scheduler {
	return &Scheduler{
		executor:  executor,
		store:     store,
		lister:    lister,
		telemetry: telemetry,
		opts:      opts,
		status:    make(map[domain.InternedString]TargetStatus),
	}
}

// Status returns the recorded status of a target, or StatusPending for
// targets never touched by a run.
func (s *Scheduler) Status(name string) TargetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[domain.NewInternedString(name)]; ok {
		return st
	}
	return StatusPending
}

func (s *Scheduler) setStatus(name domain.InternedString, st TargetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = st
}

// Run builds the requested targets and everything they depend on.
// force rebuilds targets regardless of their stamps.
func (s *Scheduler) Run(ctx context.Context, graph *domain.NodeGraph, targetNames []string, force bool) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	roots := make([]*domain.ExecNode, 0, len(targetNames))
	for _, name := range targetNames {
		node, ok := graph.FindNode(name).(*domain.ExecNode)
		if !ok {
			return zerr.With(domain.ErrTargetNotFound, "target", name)
		}
		roots = append(roots, node)
	}

	if err := s.resolveListings(ctx, graph); err != nil {
		return err
	}
	for _, node := range graph.ExecNodes() {
		if err := node.ResolveDynamic(graph); err != nil {
			return err
		}
	}

	state, err := s.newRunState(ctx, graph, roots, force)
	if err != nil {
		return err
	}

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}
		if state.active == 0 {
			// Nothing running and nothing ready: failed dependencies
			// stranded the rest.
			break
		}

		res := <-state.resultsCh
		state.handleResult(res)
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	if state.errs == nil {
		// Everything ran clean yet some target never became ready: the
		// remaining edges form a cycle.
		for _, degree := range state.inDegree {
			if degree > 0 {
				return domain.ErrCycleDetected
			}
		}
	}
	return state.errs
}

// resolveListings fans the directory scans out across the listing
// resolver and fills every listing node.
func (s *Scheduler) resolveListings(ctx context.Context, graph *domain.NodeGraph) error {
	g, _ := errgroup.WithContext(ctx)
	for _, dln := range graph.DirListNodes() {
		g.Go(func() error {
			files, err := s.lister.Resolve(dln.Spec())
			if err != nil {
				return zerr.With(err, "listing", dln.Name().String())
			}
			dln.SetFiles(files)
			return nil
		})
	}
	return g.Wait()
}

type result struct {
	target domain.InternedString
	err    error
}

type runState struct {
	s     *Scheduler
	ctx   context.Context
	force bool

	nodes     map[domain.InternedString]*domain.ExecNode
	inDegree  map[domain.InternedString]int
	children  map[domain.InternedString][]domain.InternedString
	ready     []domain.InternedString
	active    int
	resultsCh chan result
	errs      error
}

// newRunState computes the transitive exec closure of the requested
// roots and its in-degree table. Edges run from a producing exec node
// to its consumers, through prebuild declarations and through inputs
// (static or discovered) that another exec node produces.
func (s *Scheduler) newRunState(ctx context.Context, graph *domain.NodeGraph, roots []*domain.ExecNode, force bool) (*runState, error) {
	nodes := make(map[domain.InternedString]*domain.ExecNode)
	inDegree := make(map[domain.InternedString]int)
	children := make(map[domain.InternedString][]domain.InternedString)

	queue := make([]*domain.ExecNode, 0, len(roots))
	for _, root := range roots {
		if _, seen := nodes[root.Name()]; seen {
			continue
		}
		nodes[root.Name()] = root
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		deps, err := execDeps(graph, node)
		if err != nil {
			return nil, err
		}
		inDegree[node.Name()] = len(deps)
		for _, dep := range deps {
			children[dep.Name()] = append(children[dep.Name()], node.Name())
			if _, seen := nodes[dep.Name()]; !seen {
				nodes[dep.Name()] = dep
				queue = append(queue, dep)
			}
		}
	}

	var ready []domain.InternedString
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	if len(ready) == 0 && len(nodes) > 0 {
		return nil, domain.ErrCycleDetected
	}

	for name := range nodes {
		s.setStatus(name, StatusPending)
	}

	return &runState{
		s:         s,
		ctx:       ctx,
		force:     force,
		nodes:     nodes,
		inDegree:  inDegree,
		children:  children,
		ready:     ready,
		resultsCh: make(chan result, s.opts.Parallelism),
	}, nil
}

// execDeps returns the deduplicated exec nodes this node must wait for:
// declared prebuild targets and any input produced by a sibling target.
func execDeps(graph *domain.NodeGraph, node *domain.ExecNode) ([]*domain.ExecNode, error) {
	var deps []*domain.ExecNode
	seen := make(map[domain.InternedString]bool)

	add := func(en *domain.ExecNode) {
		if en != node && !seen[en.Name()] {
			seen[en.Name()] = true
			deps = append(deps, en)
		}
	}

	for _, name := range node.Config().PreBuildDependencies {
		en, ok := graph.FindNode(name).(*domain.ExecNode)
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrMissingDependency, "target", node.Name().String()), "missing_dependency", name)
		}
		add(en)
	}
	for _, dep := range node.InputDeps() {
		if en, ok := dep.(*domain.ExecNode); ok {
			add(en)
		}
	}
	for _, dep := range node.DynamicDeps() {
		if en, ok := dep.(*domain.ExecNode); ok {
			add(en)
		}
	}
	return deps, nil
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) parallelism() int {
	if state.s.opts.Parallelism < 1 {
		return 1
	}
	return state.s.opts.Parallelism
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism() && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		go func(node *domain.ExecNode) {
			state.resultsCh <- result{target: node.Name(), err: state.executeNode(node)}
		}(state.nodes[name])
	}
}

// executeNode runs one target under its telemetry vertex, skipping it
// when the recorded stamp still matches the artifact.
func (state *runState) executeNode(node *domain.ExecNode) error {
	name := node.Name().String()
	vctx, vertex := state.s.telemetry.Record(state.ctx, name)

	if !state.force && !node.Config().AlwaysRun {
		fresh, err := state.s.store.UpToDate(name, name)
		if err != nil {
			vertex.Complete(err)
			return err
		}
		if fresh {
			state.s.setStatus(node.Name(), StatusUpToDate)
			vertex.Cached()
			vertex.Complete(nil)
			return nil
		}
	}

	state.s.setStatus(node.Name(), StatusRunning)
	err := state.s.executor.Execute(vctx, node)
	vertex.Complete(err)
	return err
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil {
		if errors.Is(res.err, domain.ErrBuildAborted) {
			state.s.setStatus(res.target, StatusAborted)
		} else {
			state.s.setStatus(res.target, StatusFailed)
		}
		state.errs = errors.Join(state.errs, res.err)
		return
	}

	if state.s.Status(res.target.String()) == StatusRunning {
		state.s.setStatus(res.target, StatusCompleted)
	}
	for _, child := range state.children[res.target] {
		state.inDegree[child]--
		if state.inDegree[child] == 0 {
			state.ready = append(state.ready, child)
		}
	}
}
