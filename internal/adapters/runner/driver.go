// Package runner implements the node executor: it turns an exec node
// into a child process invocation and classifies the outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/rex/internal/adapters/proc"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.NodeExecutor = (*Driver)(nil)

// Driver implements ports.NodeExecutor on top of the proc adapter.
type Driver struct {
	logger    ports.Logger
	store     ports.StampStore
	opts      domain.Options
	mainAbort *proc.AbortFlag
}

// NewDriver creates a new Driver.
func NewDriver(logger ports.Logger, store ports.StampStore, opts domain.Options) *Driver {
	return &Driver{
		logger:    logger,
		store:     store,
		opts:      opts,
		mainAbort: proc.NewAbortFlag(),
	}
}

// Abort requests cancellation of every invocation driven by this
// Driver, current and future.
func (d *Driver) Abort() {
	d.mainAbort.Set()
}

// Execute runs one build invocation of the node.
//
// The command line is expanded from the argument template, the child is
// spawned with the resolved environment, its output is drained under
// the configured timeouts, and the exit is classified against the
// expected return code. On success the output artifact is stamped.
func (d *Driver) Execute(ctx context.Context, node *domain.ExecNode) error {
	cfg := node.Config()
	target := node.Name().String()
	executable := node.ExecutableNode().Name().String()
	commandLine := domain.BuildCommandLine(cfg.Arguments, node.TemplateInputs(), target)

	d.announce(target, executable, commandLine, cfg)

	// Bridge context cancellation onto the polled abort flag.
	localAbort := proc.NewAbortFlag()
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			localAbort.Set()
		case <-watchDone:
		}
	}()

	p := proc.New(d.mainAbort, localAbort)
	err := p.Spawn(executable, commandLine, cfg.WorkingDir, resolveEnvironment(cfg.Environment), false)
	if err != nil {
		if errors.Is(err, proc.ErrSpawnAborted) {
			return zerr.With(domain.ErrBuildAborted, "target", target)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrBuildExecutionFailed.Error()), "target", target)
	}

	var outBuf, errBuf bytes.Buffer
	p.ReadAllData(&outBuf, &errBuf,
		uint32(d.opts.ProcessTimeoutSecs)*1000,       //nolint:gosec // bounded by options validation
		uint32(d.opts.ProcessOutputTimeoutSecs)*1000) //nolint:gosec // bounded by options validation

	var exitCode int
	reason := p.WaitForExit(&exitCode)

	if reason == proc.ExitAborted {
		return zerr.With(domain.ErrBuildAborted, "target", target)
	}

	failed := reason != proc.ExitNormal || exitCode != cfg.ExpectedReturnCode

	if failed || cfg.AlwaysShowOutput || d.opts.ShowCommandOutput {
		d.dumpOutput(ctx, &outBuf, &errBuf)
	}

	if failed {
		return zerr.With(zerr.Wrap(domain.ErrBuildExecutionFailed, describeFailure(reason, exitCode, cfg.ExpectedReturnCode)),
			"target", target)
	}

	if cfg.UseStdOutAsOutput {
		if err := writeArtifact(target, outBuf.Bytes()); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrBuildExecutionFailed.Error()), "target", target)
		}
	}

	if _, err := d.store.Record(target, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrBuildExecutionFailed.Error()), "target", target)
	}

	return nil
}

func (d *Driver) announce(target, executable, commandLine string, cfg *domain.ExecConfig) {
	if d.opts.ShowCommandSummary {
		d.logger.Info("Run: " + target)
	}
	if d.opts.ShowCommandLines {
		var b strings.Builder
		fmt.Fprintf(&b, "Run: %s: %s %s", target, executable, commandLine)
		if cfg.WorkingDir != "" {
			fmt.Fprintf(&b, " (in %s)", cfg.WorkingDir)
		}
		if cfg.ExpectedReturnCode != 0 {
			fmt.Fprintf(&b, " (expecting exit code %d)", cfg.ExpectedReturnCode)
		}
		d.logger.Info(b.String())
	}
}

// dumpOutput surfaces captured output through the telemetry vertex when
// one rides on the context, or the parent streams otherwise.
func (d *Driver) dumpOutput(ctx context.Context, outBuf, errBuf *bytes.Buffer) {
	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if v := ports.VertexFromContext(ctx); v != nil {
		stdout, stderr = v.Stdout(), v.Stderr()
	}
	if outBuf.Len() > 0 {
		_, _ = stdout.Write(outBuf.Bytes())
	}
	if errBuf.Len() > 0 {
		_, _ = stderr.Write(errBuf.Bytes())
	}
}

func describeFailure(reason proc.ExitReason, exitCode, expected int) string {
	if reason != proc.ExitNormal {
		return reason.String()
	}
	return fmt.Sprintf("%s (expected %d)", proc.DescribeExitCode(exitCode), expected)
}

// writeArtifact writes captured stdout to the target path. An empty
// capture still produces the file.
func writeArtifact(target string, data []byte) error {
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return zerr.Wrap(err, "failed to create output directory")
		}
	}
	//nolint:gosec // target path is build configuration
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write output artifact")
	}
	return nil
}

// resolveEnvironment merges the node's environment block over the
// parent environment. A nil block inherits the parent environment
// untouched (nil keeps os/exec's inherit behavior).
func resolveEnvironment(nodeEnv map[string]string) []string {
	if nodeEnv == nil {
		return nil
	}

	envMap := make(map[string]string)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range nodeEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}
