package config

// Rexfile represents the structure of the rex.yaml configuration file.
type Rexfile struct {
	Version string               `yaml:"version"`
	Targets map[string]TargetDTO `yaml:"targets"`
}

// TargetDTO represents a target definition in the configuration.
// The map key is the output artifact path the target produces.
type TargetDTO struct {
	Executable        string            `yaml:"executable"`
	Input             []string          `yaml:"input"`
	InputPaths        []InputPathDTO    `yaml:"input_paths"`
	Arguments         string            `yaml:"arguments"`
	WorkingDir        string            `yaml:"working_dir"`
	ReturnCode        int               `yaml:"return_code"`
	AlwaysShowOutput  bool              `yaml:"always_show_output"`
	UseStdoutAsOutput bool              `yaml:"use_stdout_as_output"`
	Always            bool              `yaml:"always"`
	PreBuild          []string          `yaml:"prebuild"`
	Environment       map[string]string `yaml:"environment"`
}

// InputPathDTO represents a directory scan contributing discovered
// input files. Recurse defaults to true when omitted.
type InputPathDTO struct {
	Path            string   `yaml:"path"`
	Recurse         *bool    `yaml:"recurse"`
	Patterns        []string `yaml:"patterns"`
	ExcludePaths    []string `yaml:"exclude_paths"`
	ExcludeFiles    []string `yaml:"exclude_files"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}
