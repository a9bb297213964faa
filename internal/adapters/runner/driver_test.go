//go:build !windows

package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/rex/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func execNode(t *testing.T, target string, cfg domain.ExecConfig) *domain.ExecNode {
	t.Helper()
	g := domain.NewNodeGraph()
	n := domain.NewExecNode(target, cfg)
	require.NoError(t, g.AddNode(n))
	require.NoError(t, n.ResolveStatic(g))
	return n
}

type stubVertex struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (v *stubVertex) Stdout() io.Writer { return &v.stdout }
func (v *stubVertex) Stderr() io.Writer { return &v.stderr }
func (v *stubVertex) Cached()           {}
func (v *stubVertex) Complete(error)    {}

func TestDriver_SuccessStampsArtifact(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/echo",
		Arguments:         "hello world",
		UseStdOutAsOutput: true,
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), store, domain.Options{})
	require.NoError(t, d.Execute(context.Background(), node))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "hello world\n", string(data))
}

func TestDriver_StdoutArtifactMayBeEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "empty.txt")

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/true",
		UseStdOutAsOutput: true,
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), store, domain.Options{})
	require.NoError(t, d.Execute(context.Background(), node))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestDriver_ExpectedNonZeroReturnCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "probe")

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:         "/bin/sh",
		Arguments:          `-c "echo probe > ` + target + `; exit 3"`,
		ExpectedReturnCode: 3,
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), store, domain.Options{})
	require.NoError(t, d.Execute(context.Background(), node))
}

func TestDriver_ExitCodeMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	node := execNode(t, target, domain.ExecConfig{
		Executable: "/bin/false",
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), mocks.NewMockStampStore(ctrl), domain.Options{})
	err := d.Execute(context.Background(), node)
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	require.Contains(t, err.Error(), "exit code 1")
}

func TestDriver_SpawnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	node := execNode(t, target, domain.ExecConfig{
		Executable: "/nonexistent/tool-xyz",
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), mocks.NewMockStampStore(ctrl), domain.Options{})
	err := d.Execute(context.Background(), node)
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestDriver_FailureSurfacesOutputToVertex(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	node := execNode(t, target, domain.ExecConfig{
		Executable: "/bin/sh",
		Arguments:  `-c "echo diag; echo warn 1>&2; exit 1"`,
	})

	vertex := &stubVertex{}
	ctx := ports.ContextWithVertex(context.Background(), vertex)

	d := NewDriver(mocks.NewMockLogger(ctrl), mocks.NewMockStampStore(ctrl), domain.Options{})
	err := d.Execute(ctx, node)
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	require.Equal(t, "diag\n", vertex.stdout.String())
	require.Equal(t, "warn\n", vertex.stderr.String())
}

func TestDriver_AlwaysShowOutputOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/echo",
		Arguments:         "all good",
		UseStdOutAsOutput: true,
		AlwaysShowOutput:  true,
	})

	vertex := &stubVertex{}
	ctx := ports.ContextWithVertex(context.Background(), vertex)

	d := NewDriver(mocks.NewMockLogger(ctrl), store, domain.Options{})
	require.NoError(t, d.Execute(ctx, node))
	require.Equal(t, "all good\n", vertex.stdout.String())
}

func TestDriver_ContextCancellationAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	node := execNode(t, target, domain.ExecConfig{
		Executable: "/bin/sh",
		Arguments:  `-c "sleep 30"`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	d := NewDriver(mocks.NewMockLogger(ctrl), mocks.NewMockStampStore(ctrl), domain.Options{})
	start := time.Now()
	err := d.Execute(ctx, node)
	require.ErrorIs(t, err, domain.ErrBuildAborted)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestDriver_OverallTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	node := execNode(t, target, domain.ExecConfig{
		Executable: "/bin/sh",
		Arguments:  `-c "sleep 30"`,
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), mocks.NewMockStampStore(ctrl), domain.Options{
		ProcessTimeoutSecs: 1,
	})
	err := d.Execute(context.Background(), node)
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	require.Contains(t, err.Error(), "Process Timeout")
}

func TestDriver_AnnounceVerbose(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		require.Contains(t, msg, "Run: "+target)
		require.Contains(t, msg, "/bin/true")
	})

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/true",
		UseStdOutAsOutput: true,
	})

	d := NewDriver(logger, store, domain.Options{ShowCommandLines: true})
	require.NoError(t, d.Execute(context.Background(), node))
}

func TestDriver_AnnounceSummaryAndVerbose(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "out.txt")

	// With both flags set the short summary line comes first, then the
	// full command line.
	var lines []string
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).Times(2).Do(func(msg string) {
		lines = append(lines, msg)
	})

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/true",
		UseStdOutAsOutput: true,
	})

	d := NewDriver(logger, store, domain.Options{
		ShowCommandSummary: true,
		ShowCommandLines:   true,
	})
	require.NoError(t, d.Execute(context.Background(), node))

	require.Len(t, lines, 2)
	require.Equal(t, "Run: "+target, lines[0])
	require.Contains(t, lines[1], "/bin/true")
}

func TestDriver_NodeEnvironmentOverridesParent(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := filepath.Join(t.TempDir(), "env.txt")
	t.Setenv("REX_DRIVER_PROBE", "parent")

	store := mocks.NewMockStampStore(ctrl)
	store.EXPECT().Record(target, target).Return(domain.BuildStamp{}, nil)

	node := execNode(t, target, domain.ExecConfig{
		Executable:        "/bin/sh",
		Arguments:         `-c "echo $REX_DRIVER_PROBE"`,
		UseStdOutAsOutput: true,
		Environment:       map[string]string{"REX_DRIVER_PROBE": "node"},
	})

	d := NewDriver(mocks.NewMockLogger(ctrl), store, domain.Options{})
	require.NoError(t, d.Execute(context.Background(), node))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "node\n", string(data))
}
