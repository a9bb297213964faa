package scheduler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/rex/internal/adapters/telemetry"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports/mocks"
	"go.trai.ch/rex/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	executor *mocks.MockNodeExecutor
	store    *mocks.MockStampStore
	lister   *mocks.MockListingResolver
	sched    *scheduler.Scheduler
}

func newFixture(t *testing.T, opts domain.Options) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	if opts.Parallelism == 0 {
		opts.Parallelism = 4
	}

	f := &fixture{
		executor: mocks.NewMockNodeExecutor(ctrl),
		store:    mocks.NewMockStampStore(ctrl),
		lister:   mocks.NewMockListingResolver(ctrl),
	}
	f.sched = scheduler.NewScheduler(f.executor, f.store, f.lister, telemetry.NewNoOp(), opts)
	return f
}

func buildGraph(t *testing.T, targets map[string]domain.ExecConfig) *domain.NodeGraph {
	t.Helper()
	g := domain.NewNodeGraph()
	nodes := make([]*domain.ExecNode, 0, len(targets))
	for name, cfg := range targets {
		n := domain.NewExecNode(name, cfg)
		require.NoError(t, g.AddNode(n))
		nodes = append(nodes, n)
	}
	for _, n := range nodes {
		require.NoError(t, n.ResolveStatic(g))
	}
	return g
}

func TestScheduler_BuildsStaleTarget(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {Executable: "/bin/cc", InputFiles: []string{"a.c"}},
	})

	f.store.EXPECT().UpToDate("out/a.o", "out/a.o").Return(false, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/a.o"}, false))
	require.Equal(t, scheduler.StatusCompleted, f.sched.Status("out/a.o"))
}

func TestScheduler_SkipsUpToDateTarget(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {Executable: "/bin/cc"},
	})

	f.store.EXPECT().UpToDate("out/a.o", "out/a.o").Return(true, nil)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/a.o"}, false))
	require.Equal(t, scheduler.StatusUpToDate, f.sched.Status("out/a.o"))
}

func TestScheduler_ForceBypassesStamps(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {Executable: "/bin/cc"},
	})

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/a.o"}, true))
	require.Equal(t, scheduler.StatusCompleted, f.sched.Status("out/a.o"))
}

func TestScheduler_AlwaysRunBypassesStamps(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"probe": {Executable: "/bin/probe", AlwaysRun: true},
	})

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"probe"}, false))
}

func TestScheduler_PreBuildMustNameExecTarget(t *testing.T) {
	f := newFixture(t, domain.Options{})
	// "a.c" resolves to a plain file node, which cannot satisfy a
	// prebuild declaration.
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {
			Executable:           "/bin/cc",
			InputFiles:           []string{"a.c"},
			PreBuildDependencies: []string{"a.c"},
		},
	})

	err := f.sched.Run(context.Background(), g, []string{"out/a.o"}, false)
	require.ErrorIs(t, err, domain.ErrMissingDependency)

	var z *zerr.Error
	require.ErrorAs(t, err, &z)
	require.Equal(t, "out/a.o", z.Metadata()["target"])
	require.Equal(t, "a.c", z.Metadata()["missing_dependency"])
}

func TestScheduler_PreBuildOrdering(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/gen.c": {Executable: "/bin/gen"},
		"out/gen.o": {Executable: "/bin/cc", PreBuildDependencies: []string{"out/gen.c"}},
	})

	f.store.EXPECT().UpToDate(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

	var mu sync.Mutex
	var order []string
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, node *domain.ExecNode) error {
			mu.Lock()
			order = append(order, node.Name().String())
			mu.Unlock()
			return nil
		}).Times(2)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/gen.o"}, false))
	require.Equal(t, []string{"out/gen.c", "out/gen.o"}, order)
}

func TestScheduler_SiblingOutputOrdersExecution(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/gen.c": {Executable: "/bin/gen"},
		"out/gen.o": {Executable: "/bin/cc", InputFiles: []string{"out/gen.c"}},
	})

	f.store.EXPECT().UpToDate(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

	var mu sync.Mutex
	var order []string
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, node *domain.ExecNode) error {
			mu.Lock()
			order = append(order, node.Name().String())
			mu.Unlock()
			return nil
		}).Times(2)

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/gen.o"}, false))
	require.Equal(t, []string{"out/gen.c", "out/gen.o"}, order)
}

func TestScheduler_FailureStrandsDependents(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/gen.c": {Executable: "/bin/gen"},
		"out/gen.o": {Executable: "/bin/cc", PreBuildDependencies: []string{"out/gen.c"}},
	})

	f.store.EXPECT().UpToDate("out/gen.c", "out/gen.c").Return(false, nil)
	boom := zerr.Wrap(domain.ErrBuildExecutionFailed, "tool exploded")
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(boom)

	err := f.sched.Run(context.Background(), g, []string{"out/gen.o"}, false)
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	require.Equal(t, scheduler.StatusFailed, f.sched.Status("out/gen.c"))
	require.Equal(t, scheduler.StatusPending, f.sched.Status("out/gen.o"))
}

func TestScheduler_AbortedStatus(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {Executable: "/bin/cc"},
	})

	f.store.EXPECT().UpToDate("out/a.o", "out/a.o").Return(false, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(zerr.With(domain.ErrBuildAborted, "target", "out/a.o"))

	err := f.sched.Run(context.Background(), g, []string{"out/a.o"}, false)
	require.ErrorIs(t, err, domain.ErrBuildAborted)
	require.Equal(t, scheduler.StatusAborted, f.sched.Status("out/a.o"))
}

func TestScheduler_TargetValidation(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/a.o": {Executable: "/bin/cc"},
	})

	t.Run("no targets", func(t *testing.T) {
		err := f.sched.Run(context.Background(), g, nil, false)
		require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
	})

	t.Run("unknown target", func(t *testing.T) {
		err := f.sched.Run(context.Background(), g, []string{"out/ghost"}, false)
		require.ErrorIs(t, err, domain.ErrTargetNotFound)
	})

	t.Run("target names a plain file", func(t *testing.T) {
		err := f.sched.Run(context.Background(), g, []string{"/bin/cc"}, false)
		require.ErrorIs(t, err, domain.ErrTargetNotFound)
	})
}

func TestScheduler_CycleDetected(t *testing.T) {
	f := newFixture(t, domain.Options{})

	g := domain.NewNodeGraph()
	a := domain.NewExecNode("a", domain.ExecConfig{Executable: "/bin/x", PreBuildDependencies: []string{"b"}})
	b := domain.NewExecNode("b", domain.ExecConfig{Executable: "/bin/x", PreBuildDependencies: []string{"a"}})
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))
	require.NoError(t, a.ResolveStatic(g))
	require.NoError(t, b.ResolveStatic(g))

	err := f.sched.Run(context.Background(), g, []string{"a"}, false)
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestScheduler_ResolvesListingsBeforeExecution(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/all.a": {
			Executable: "/bin/ar",
			InputPaths: []domain.DirScanSpec{{Path: "src", Recurse: true}},
		},
	})

	f.lister.EXPECT().Resolve(domain.DirScanSpec{Path: "src", Recurse: true}).
		Return([]string{"src/a.c", "src/b.c"}, nil)
	f.store.EXPECT().UpToDate("out/all.a", "out/all.a").Return(false, nil)

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, node *domain.ExecNode) error {
			deps := node.DynamicDeps()
			require.Len(t, deps, 2)
			require.Equal(t, "src/a.c", deps[0].Name().String())
			return nil
		})

	require.NoError(t, f.sched.Run(context.Background(), g, []string{"out/all.a"}, false))
}

func TestScheduler_ListingFailureFailsRun(t *testing.T) {
	f := newFixture(t, domain.Options{})
	g := buildGraph(t, map[string]domain.ExecConfig{
		"out/all.a": {
			Executable: "/bin/ar",
			InputPaths: []domain.DirScanSpec{{Path: "missing"}},
		},
	})

	f.lister.EXPECT().Resolve(gomock.Any()).Return(nil, zerr.New("scan failed"))

	err := f.sched.Run(context.Background(), g, []string{"out/all.a"}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "scan failed")
}
