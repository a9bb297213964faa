// Package config provides the configuration loader for rex.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up in the working
// directory.
const DefaultFilename = "rex.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
	log      ports.Logger
}

// NewLoader creates a loader reading DefaultFilename.
func NewLoader(log ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{Filename: DefaultFilename, log: log}
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.NodeGraph, error) {
	path := filepath.Join(cwd, l.Filename)
	return Load(path)
}

// Load reads a configuration file and returns a node graph with static
// dependencies resolved.
func Load(path string) (*domain.NodeGraph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var rexfile Rexfile
	if err := yaml.Unmarshal(data, &rexfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	g := domain.NewNodeGraph()

	// Map iteration order is random; sort for deterministic graph layout.
	names := make([]string, 0, len(rexfile.Targets))
	for name := range rexfile.Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	targetNames := make(map[string]bool, len(names))
	for _, name := range names {
		targetNames[name] = true
	}

	for _, name := range names {
		dto := rexfile.Targets[name]

		if name == "all" {
			return nil, zerr.With(zerr.New("target name 'all' is reserved"), "target_name", name)
		}
		if dto.Executable == "" {
			return nil, zerr.With(zerr.New("target has no executable"), "target_name", name)
		}

		for _, dep := range dto.PreBuild {
			if !targetNames[dep] {
				return nil, zerr.With(zerr.With(domain.ErrMissingDependency, "target_name", name), "missing_dependency", dep)
			}
		}

		node := domain.NewExecNode(name, domain.ExecConfig{
			Executable:           dto.Executable,
			InputFiles:           dto.Input,
			InputPaths:           scanSpecs(dto.InputPaths),
			Arguments:            dto.Arguments,
			WorkingDir:           dto.WorkingDir,
			ExpectedReturnCode:   dto.ReturnCode,
			AlwaysShowOutput:     dto.AlwaysShowOutput,
			UseStdOutAsOutput:    dto.UseStdoutAsOutput,
			AlwaysRun:            dto.Always,
			PreBuildDependencies: dto.PreBuild,
			Environment:          dto.Environment,
		})

		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	// All exec nodes exist before the static pass so inputs produced by
	// sibling targets resolve to those targets rather than plain files.
	for _, node := range g.ExecNodes() {
		if err := node.ResolveStatic(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func scanSpecs(dtos []InputPathDTO) []domain.DirScanSpec {
	if len(dtos) == 0 {
		return nil
	}

	specs := make([]domain.DirScanSpec, len(dtos))
	for i, dto := range dtos {
		recurse := true
		if dto.Recurse != nil {
			recurse = *dto.Recurse
		}
		specs[i] = domain.DirScanSpec{
			Path:            dto.Path,
			Recurse:         recurse,
			Patterns:        dto.Patterns,
			ExcludePaths:    dto.ExcludePaths,
			ExcludedFiles:   dto.ExcludeFiles,
			ExcludePatterns: dto.ExcludePatterns,
		}
	}
	return specs
}
