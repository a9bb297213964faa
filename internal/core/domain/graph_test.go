package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNodeGraph_FileNodeFor_FindOrCreate(t *testing.T) {
	g := domain.NewNodeGraph()

	a, err := g.FileNodeFor("src/a.c")
	require.NoError(t, err)

	b, err := g.FileNodeFor("src/a.c")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, g.NodeCount())
}

func TestNodeGraph_FileNodeFor_ExecNodeSatisfiesLookup(t *testing.T) {
	g := domain.NewNodeGraph()

	en := domain.NewExecNode("out/tool.txt", domain.ExecConfig{Executable: "/bin/tool"})
	require.NoError(t, g.AddNode(en))

	n, err := g.FileNodeFor("out/tool.txt")
	require.NoError(t, err)
	require.Same(t, domain.Node(en), n)
}

func TestNodeGraph_FileNodeFor_ListingCollision(t *testing.T) {
	g := domain.NewNodeGraph()

	spec := domain.DirScanSpec{Path: "src"}
	_, err := g.DirListFor(spec)
	require.NoError(t, err)

	_, err = g.FileNodeFor(spec.ListingName())
	require.ErrorIs(t, err, domain.ErrNotAFileNode)

	// Both the offending path and the colliding node kind ride on the error.
	var z *zerr.Error
	require.ErrorAs(t, err, &z)
	require.Contains(t, z.Metadata(), "path")
	require.Contains(t, z.Metadata(), "kind")
}

func TestNodeGraph_DirListFor_Collision(t *testing.T) {
	g := domain.NewNodeGraph()

	spec := domain.DirScanSpec{Path: "src"}
	require.NoError(t, g.AddNode(domain.NewFileNode(spec.ListingName())))

	_, err := g.DirListFor(spec)
	require.ErrorIs(t, err, domain.ErrNotAFileNode)

	var z *zerr.Error
	require.ErrorAs(t, err, &z)
	require.Equal(t, "src", z.Metadata()["path"])
	require.Contains(t, z.Metadata(), "kind")
}

func TestNodeGraph_AddNode_Duplicate(t *testing.T) {
	g := domain.NewNodeGraph()

	require.NoError(t, g.AddNode(domain.NewFileNode("a")))
	err := g.AddNode(domain.NewFileNode("a"))
	require.ErrorIs(t, err, domain.ErrNodeAlreadyExists)
}

func TestExecNode_ResolveStatic_Layout(t *testing.T) {
	g := domain.NewNodeGraph()

	en := domain.NewExecNode("out.o", domain.ExecConfig{
		Executable: "/usr/bin/cc",
		InputFiles: []string{"a.c", "b.c"},
		InputPaths: []domain.DirScanSpec{{Path: "gen", Recurse: true}},
	})
	require.NoError(t, g.AddNode(en))
	require.NoError(t, en.ResolveStatic(g))

	require.Equal(t, "/usr/bin/cc", en.ExecutableNode().Name().String())

	deps := en.InputDeps()
	require.Len(t, deps, 3)
	require.Equal(t, "a.c", deps[0].Name().String())
	require.Equal(t, "b.c", deps[1].Name().String())
	require.Equal(t, domain.KindDirList, deps[2].Kind())
}

func TestExecNode_ResolveDynamic_Idempotent(t *testing.T) {
	g := domain.NewNodeGraph()

	en := domain.NewExecNode("out.o", domain.ExecConfig{
		Executable: "/usr/bin/cc",
		InputFiles: []string{"a.c"},
		InputPaths: []domain.DirScanSpec{{Path: "gen"}},
	})
	require.NoError(t, g.AddNode(en))
	require.NoError(t, en.ResolveStatic(g))

	listing := en.InputDeps()[1].(*domain.DirListNode)
	listing.SetFiles([]string{"gen/x.c", "gen/y.c"})

	require.NoError(t, en.ResolveDynamic(g))
	first := en.DynamicDeps()
	require.Len(t, first, 2)
	require.Equal(t, "gen/x.c", first[0].Name().String())
	require.Equal(t, "gen/y.c", first[1].Name().String())

	// A second pass over the same listing yields an identical list:
	// no duplication, no stale entries from the prior pass.
	require.NoError(t, en.ResolveDynamic(g))
	second := en.DynamicDeps()
	require.Len(t, second, 2)
	require.Equal(t, first[0].Name(), second[0].Name())
	require.Equal(t, first[1].Name(), second[1].Name())
}

func TestExecNode_ResolveDynamic_ClearsPreviousPass(t *testing.T) {
	g := domain.NewNodeGraph()

	en := domain.NewExecNode("out.o", domain.ExecConfig{
		Executable: "/usr/bin/cc",
		InputPaths: []domain.DirScanSpec{{Path: "gen"}},
	})
	require.NoError(t, g.AddNode(en))
	require.NoError(t, en.ResolveStatic(g))

	listing := en.InputDeps()[0].(*domain.DirListNode)
	listing.SetFiles([]string{"gen/x.c"})
	require.NoError(t, en.ResolveDynamic(g))
	require.Len(t, en.DynamicDeps(), 1)

	listing.SetFiles([]string{"gen/y.c"})
	require.NoError(t, en.ResolveDynamic(g))

	deps := en.DynamicDeps()
	require.Len(t, deps, 1)
	require.Equal(t, "gen/y.c", deps[0].Name().String())
}

func TestExecNode_ResolveDynamic_CollisionWithListingNode(t *testing.T) {
	g := domain.NewNodeGraph()

	other := domain.DirScanSpec{Path: "elsewhere"}
	_, err := g.DirListFor(other)
	require.NoError(t, err)

	en := domain.NewExecNode("out.o", domain.ExecConfig{
		Executable: "/usr/bin/cc",
		InputPaths: []domain.DirScanSpec{{Path: "gen"}},
	})
	require.NoError(t, g.AddNode(en))
	require.NoError(t, en.ResolveStatic(g))

	// A discovered path colliding with a non-file node is a configuration error.
	listing := en.InputDeps()[0].(*domain.DirListNode)
	listing.SetFiles([]string{other.ListingName()})
	require.ErrorIs(t, en.ResolveDynamic(g), domain.ErrNotAFileNode)
}

func TestDirScanSpec_ListingName_DistinguishesConfiguration(t *testing.T) {
	base := domain.DirScanSpec{Path: "src"}
	recurse := domain.DirScanSpec{Path: "src", Recurse: true}
	patterns := domain.DirScanSpec{Path: "src", Patterns: []string{"*.c"}}

	require.NotEqual(t, base.ListingName(), recurse.ListingName())
	require.NotEqual(t, base.ListingName(), patterns.ListingName())
	require.Equal(t, base.ListingName(), domain.DirScanSpec{Path: "src"}.ListingName())
}
