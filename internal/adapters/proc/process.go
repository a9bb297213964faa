// Package proc provides the cross-platform child process adapter: spawn,
// deadlock-free output capture with dual timeouts, single-shot wait, and
// recursive process tree termination.
package proc

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/zerr"
)

// abortPollInterval bounds how long a set abort flag can go unnoticed
// while draining output.
const abortPollInterval = 15 * time.Millisecond

// ErrSpawnAborted is returned by Spawn when an abort flag was already
// set; HasAborted reports true afterwards.
var ErrSpawnAborted = zerr.New("spawn aborted")

// Process owns one child process and its standard stream handles. It is
// an explicit state machine: once a terminal reason is recorded, state
// queries are pure reads and never touch the OS again.
//
// A Process belongs to one execution attempt and is not safe for
// concurrent use from multiple goroutines.
type Process struct {
	aborts AbortSet

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	sharing  bool
	started  bool
	waited   bool
	detached bool
	reason   ExitReason
	exitCode int
}

// New creates a Process observing the given abort flags. Either flag
// may be nil.
func New(mainAbort, localAbort *AbortFlag) *Process {
	return &Process{
		aborts: NewAbortSet(mainAbort, localAbort),
	}
}

// Spawn starts the child with the given command line, working directory
// (current directory if empty) and environment (inherited if nil).
//
// Unless shareParentHandles is set, the child's stdout and stderr are
// redirected through pipes owned by this Process for later capture.
// With shareParentHandles the child writes straight to the caller's
// console and capture is unavailable.
//
// Spawn fails if the executable cannot be started; a child that later
// exits non-zero is not a spawn failure.
func (p *Process) Spawn(executable, arguments, workingDir string, env []string, shareParentHandles bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return zerr.New("process already spawned")
	}
	if p.aborts.Aborted() {
		p.reason = ExitAborted
		return ErrSpawnAborted
	}

	cmd := exec.Command(executable, domain.SplitCommandLine(arguments)...) //nolint:gosec // command is build configuration
	if workingDir != "" {
		cmd.Dir = workingDir
	}
	if env != nil {
		cmd.Env = env
	}
	setSysProcAttr(cmd)

	if shareParentHandles {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		p.sharing = true
	} else {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return zerr.Wrap(err, "failed to create stdout pipe")
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return zerr.Wrap(err, "failed to create stderr pipe")
		}
		p.stdout = stdout
		p.stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		p.stdout = nil
		p.stderr = nil
		return zerr.With(zerr.Wrap(err, "failed to spawn process"), "executable", executable)
	}

	p.cmd = cmd
	p.started = true
	return nil
}

// ReadAllData drains stdout and stderr into the caller-supplied buffers
// until the child closes both streams or a timeout or abort fires.
// Timeouts are in milliseconds; 0 disables the corresponding timer. The
// inactivity timer resets every time new bytes arrive on either stream.
//
// Each stream is pumped by its own reader feeding one wait loop, so the
// call never blocks on one stream while data is pending on the other.
// On timeout the child's whole process tree is killed and the terminal
// state is recorded; whatever output was read so far stays in the
// buffers. Returns true only if the child exited on its own.
func (p *Process) ReadAllData(outBuf, errBuf *bytes.Buffer, timeoutMs, inactivityTimeoutMs uint32) bool {
	p.mu.Lock()
	if !p.started || p.reason != ExitUndefined {
		reason := p.reason
		p.mu.Unlock()
		return reason == ExitNormal
	}
	stdout, stderr, sharing := p.stdout, p.stderr, p.sharing
	p.mu.Unlock()

	if sharing {
		// No redirection took place; there is nothing to capture.
		var code int
		return p.WaitForExit(&code) == ExitNormal
	}

	activity := make(chan struct{}, 1)
	var bufMu sync.Mutex
	var wg sync.WaitGroup
	pump := func(r io.Reader, dst *bytes.Buffer) {
		defer wg.Done()
		chunk := make([]byte, 4096)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				bufMu.Lock()
				_, _ = dst.Write(chunk[:n])
				bufMu.Unlock()
				select {
				case activity <- struct{}{}:
				default:
				}
			}
			if err != nil {
				return
			}
		}
	}
	wg.Add(2)
	go pump(stdout, outBuf)
	go pump(stderr, errBuf)

	streamsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(streamsDone)
	}()

	var overallC, inactivityC <-chan time.Time
	if timeoutMs > 0 {
		t := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer t.Stop()
		overallC = t.C
	}
	var inactivityTimer *time.Timer
	inactivityBudget := time.Duration(inactivityTimeoutMs) * time.Millisecond
	if inactivityTimeoutMs > 0 {
		inactivityTimer = time.NewTimer(inactivityBudget)
		defer inactivityTimer.Stop()
		inactivityC = inactivityTimer.C
	}
	poll := time.NewTicker(abortPollInterval)
	defer poll.Stop()

	for {
		select {
		case <-streamsDone:
			// Both pipes hit EOF, but a child that closed its own
			// streams may still be running. Keep the timers and the
			// abort poll armed until it is reaped.
			exited := make(chan struct{})
			go func() {
				p.awaitExit()
				close(exited)
			}()
			for {
				select {
				case <-exited:
					p.conclude(ExitNormal)
					return p.exitReason() == ExitNormal

				case <-overallC:
					p.killAndRecord(exited, ExitTimeout)
					return false

				case <-inactivityC:
					p.killAndRecord(exited, ExitTimeoutInactive)
					return false

				case <-poll.C:
					if p.aborts.Aborted() {
						p.killAndRecord(exited, ExitAborted)
						return false
					}
				}
			}

		case <-activity:
			if inactivityTimer != nil {
				if !inactivityTimer.Stop() {
					select {
					case <-inactivityTimer.C:
					default:
					}
				}
				inactivityTimer.Reset(inactivityBudget)
			}

		case <-overallC:
			p.terminate(ExitTimeout)
			<-streamsDone
			return false

		case <-inactivityC:
			p.terminate(ExitTimeoutInactive)
			<-streamsDone
			return false

		case <-poll.C:
			if p.aborts.Aborted() {
				p.terminate(ExitAborted)
				<-streamsDone
				return false
			}
		}
	}
}

// WaitForExit blocks until the child has terminated (if it hasn't
// already been recorded), records the classification on first call, and
// returns the cached classification on every later call. exitCode is
// written only for ExitNormal.
func (p *Process) WaitForExit(exitCode *int) ExitReason {
	p.mu.Lock()
	if p.reason != ExitUndefined {
		reason, code := p.reason, p.exitCode
		p.mu.Unlock()
		if reason == ExitNormal && exitCode != nil {
			*exitCode = code
		}
		return reason
	}
	started := p.started
	p.mu.Unlock()

	if !started {
		return ExitUndefined
	}

	if p.aborts.Aborted() {
		p.terminate(ExitAborted)
		return ExitAborted
	}

	p.conclude(ExitNormal)

	p.mu.Lock()
	reason, code := p.reason, p.exitCode
	p.mu.Unlock()
	if reason == ExitNormal && exitCode != nil {
		*exitCode = code
	}
	return reason
}

// KillProcessTree forcibly terminates every descendant of the child and
// then the child itself. Descendants are matched by ancestry and by
// creation time, so an unrelated process that reuses a recycled
// identifier is never killed.
func (p *Process) KillProcessTree() {
	p.mu.Lock()
	cmd, detached := p.cmd, p.detached
	p.mu.Unlock()

	if detached || cmd == nil || cmd.Process == nil {
		return
	}
	killTree(cmd.Process.Pid)
}

// Detach releases ownership of all handles without terminating the
// child. The Process manages nothing afterwards.
func (p *Process) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detached = true
	if p.stdout != nil {
		_ = p.stdout.Close()
		p.stdout = nil
	}
	if p.stderr != nil {
		_ = p.stderr.Close()
		p.stderr = nil
	}
	if p.cmd != nil && p.cmd.Process != nil && !p.waited {
		_ = p.cmd.Process.Release()
	}
}

// IsRunning reports whether the child was spawned and no terminal state
// has been recorded yet.
func (p *Process) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && !p.detached && p.reason == ExitUndefined
}

// HasAborted reports whether the terminal state is ExitAborted.
func (p *Process) HasAborted() bool {
	return p.exitReason() == ExitAborted
}

func (p *Process) exitReason() ExitReason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// terminate kills the process tree, reaps the child, and records the
// forced terminal reason.
func (p *Process) terminate(reason ExitReason) {
	p.KillProcessTree()
	p.awaitExit()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reason == ExitUndefined {
		p.reason = reason
	}
}

// killAndRecord kills the tree of a child whose streams already ended,
// waits for the in-flight reap to finish, and records the forced
// terminal reason. The reap runs in its own goroutine, so terminate's
// direct awaitExit call cannot be used here.
func (p *Process) killAndRecord(exited <-chan struct{}, reason ExitReason) {
	p.KillProcessTree()
	<-exited

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reason == ExitUndefined {
		p.reason = reason
	}
}

// conclude reaps the child after a natural end of both streams and
// records the exit code.
func (p *Process) conclude(reason ExitReason) {
	p.awaitExit()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reason != ExitUndefined {
		return
	}
	p.reason = reason
	if reason == ExitNormal && p.cmd != nil {
		p.exitCode = exitCodeFromState(p.cmd.ProcessState)
	}
}

// awaitExit reaps the child exactly once. Wait errors carry the
// non-zero exit status, which is read from ProcessState instead.
func (p *Process) awaitExit() {
	p.mu.Lock()
	if p.waited || p.cmd == nil {
		p.mu.Unlock()
		return
	}
	cmd := p.cmd
	p.mu.Unlock()

	_ = cmd.Wait()

	p.mu.Lock()
	p.waited = true
	p.mu.Unlock()
}
