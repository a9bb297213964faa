package domain

import (
	"sync/atomic"

	"go.trai.ch/zerr"
)

// ExecConfig is the configuration surface of an exec node, populated by
// the configuration loader.
type ExecConfig struct {
	// Executable is the path of the tool to run.
	Executable string
	// InputFiles are explicit input file paths.
	InputFiles []string
	// InputPaths are directory scans contributing discovered inputs.
	InputPaths []DirScanSpec
	// Arguments is the raw argument template string.
	Arguments string
	// WorkingDir is the working directory for the child process.
	// Empty means the current directory of the build.
	WorkingDir string
	// ExpectedReturnCode is the exit code that counts as success.
	ExpectedReturnCode int
	// AlwaysShowOutput surfaces captured output even on success.
	AlwaysShowOutput bool
	// UseStdOutAsOutput writes captured stdout to the node's output path.
	UseStdOutAsOutput bool
	// AlwaysRun marks the node stale on every pass.
	AlwaysRun bool
	// PreBuildDependencies are names of targets that must build first.
	PreBuildDependencies []string
	// Environment is the child's environment block. Nil inherits the
	// parent environment.
	Environment map[string]string
}

// ExecNode is a build graph node that runs an external tool.
// Its name is the output artifact path.
//
// Static dependencies are laid out as [executable, input files...,
// directory listings...]; the input file count records where the listing
// section starts. Dynamic dependencies are the files discovered inside
// the listings, recomputed from scratch on every resolution pass.
type ExecNode struct {
	name InternedString
	cfg  ExecConfig

	numInputFiles int
	static        []Node
	dynamic       atomic.Pointer[[]Node]
}

// NewExecNode creates an exec node producing the given output path.
func NewExecNode(output string, cfg ExecConfig) *ExecNode {
	return &ExecNode{
		name: NewInternedString(output),
		cfg:  cfg,
	}
}

// Name returns the output artifact path.
func (n *ExecNode) Name() InternedString { return n.name }

// Kind returns KindExec.
func (n *ExecNode) Kind() NodeKind { return KindExec }

// Config returns the node configuration.
func (n *ExecNode) Config() *ExecConfig { return &n.cfg }

// ResolveStatic computes the static dependency set. It is called once,
// at graph construction time, after all exec nodes have been added.
func (n *ExecNode) ResolveStatic(g *NodeGraph) error {
	executable, err := g.FileNodeFor(n.cfg.Executable)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve executable"), "target", n.name.String())
	}

	static := make([]Node, 0, 1+len(n.cfg.InputFiles)+len(n.cfg.InputPaths))
	static = append(static, executable)

	for _, input := range n.cfg.InputFiles {
		fn, err := g.FileNodeFor(input)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve input"), "target", n.name.String())
		}
		static = append(static, fn)
	}

	for _, spec := range n.cfg.InputPaths {
		dln, err := g.DirListFor(spec)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve input path"), "target", n.name.String())
		}
		static = append(static, dln)
	}

	n.numInputFiles = len(n.cfg.InputFiles)
	n.static = static
	return nil
}

// ResolveDynamic expands the directory listings into file dependencies.
// A fresh list is built each pass and swapped in atomically, so entries
// from a previous pass never survive and concurrent readers never see a
// half-built list. Order follows listing order, then file order within
// each listing.
func (n *ExecNode) ResolveDynamic(g *NodeGraph) error {
	dynamic := make([]Node, 0)

	start := 1 + n.numInputFiles
	for _, dep := range n.static[start:] {
		dln := dep.(*DirListNode)
		for _, file := range dln.Files() {
			fn, err := g.FileNodeFor(file)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "discovered input is not a file"), "target", n.name.String())
			}
			dynamic = append(dynamic, fn)
		}
	}

	n.dynamic.Store(&dynamic)
	return nil
}

// ExecutableNode returns the resolved executable dependency.
func (n *ExecNode) ExecutableNode() Node {
	return n.static[0]
}

// InputDeps returns the static input dependencies after the executable:
// explicit input files first, then directory listings.
func (n *ExecNode) InputDeps() []Node {
	return n.static[1:]
}

// DynamicDeps returns the file dependencies discovered through
// directory listings, or nil before the first dynamic pass.
func (n *ExecNode) DynamicDeps() []Node {
	p := n.dynamic.Load()
	if p == nil {
		return nil
	}
	return *p
}

// TemplateInputs maps the input dependencies to command line template
// inputs: file deps contribute their name, listing deps contribute
// their discovered files.
func (n *ExecNode) TemplateInputs() []TemplateInput {
	deps := n.InputDeps()
	inputs := make([]TemplateInput, 0, len(deps))
	for _, dep := range deps {
		if dln, ok := dep.(*DirListNode); ok {
			inputs = append(inputs, TemplateInput{Files: dln.Files(), Listing: true})
			continue
		}
		inputs = append(inputs, TemplateInput{Name: dep.Name().String()})
	}
	return inputs
}
