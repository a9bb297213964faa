package config

import (
	"context"
	"runtime"
	"strings"

	"github.com/grindlemire/graft"
	"github.com/spf13/viper"
	"go.trai.ch/rex/internal/core/domain"
)

// OptionsNodeID is the unique identifier for the build options node.
const OptionsNodeID graft.ID = "core.options"

const envPrefix = "REX"

// NewOptionsViper returns a viper instance with the option defaults and
// environment binding registered. Command flags are bound on top of it
// by the CLI layer.
func NewOptionsViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout-secs", 0)
	v.SetDefault("output-timeout-secs", 0)
	v.SetDefault("show-output", false)
	v.SetDefault("summary", false)
	v.SetDefault("verbose", false)
	v.SetDefault("parallelism", runtime.NumCPU())
	return v
}

// OptionsFromViper reads the build options out of the given viper.
func OptionsFromViper(v *viper.Viper) domain.Options {
	opts := domain.Options{
		ProcessTimeoutSecs:       v.GetInt("timeout-secs"),
		ProcessOutputTimeoutSecs: v.GetInt("output-timeout-secs"),
		ShowCommandOutput:        v.GetBool("show-output"),
		ShowCommandSummary:       v.GetBool("summary"),
		ShowCommandLines:         v.GetBool("verbose"),
		Parallelism:              v.GetInt("parallelism"),
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.ProcessTimeoutSecs < 0 {
		opts.ProcessTimeoutSecs = 0
	}
	if opts.ProcessOutputTimeoutSecs < 0 {
		opts.ProcessOutputTimeoutSecs = 0
	}
	return opts
}

// optionsViper is the process-wide viper instance the CLI layer binds
// its flags into before the graph is executed.
var optionsViper = NewOptionsViper()

// OptionsViper returns the viper instance backing the options node.
func OptionsViper() *viper.Viper {
	return optionsViper
}

func init() {
	graft.Register(graft.Node[domain.Options]{
		ID:        OptionsNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (domain.Options, error) {
			return OptionsFromViper(optionsViper), nil
		},
	})
}
