//go:build !windows

package proc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in its own process group so the whole
// tree can be targeted on termination.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// exitCodeFromState maps the wait status to an exit code, using the
// 128+signal convention for signalled children.
func exitCodeFromState(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ws.ExitStatus()
	}
	return ps.ExitCode()
}

// DescribeExitCode renders an exit code with a description for
// well-known codes (terminating signals above 128).
func DescribeExitCode(code int) string {
	if code > 128 && code < 128+64 {
		return fmt.Sprintf("exit code %d (signal: %s)", code, syscall.Signal(code-128).String())
	}
	return fmt.Sprintf("exit code %d", code)
}

// killTree terminates every descendant of rootPid before rootPid
// itself, deepest first. The snapshot walk guards against PID reuse by
// comparing process start times; the process-group kill afterwards is a
// backstop for children that raced the snapshot.
func killTree(rootPid int) {
	procs := snapshotProcesses()
	victims := collectDescendants(procs, rootPid)
	for i := len(victims) - 1; i >= 0; i-- {
		_ = syscall.Kill(victims[i], syscall.SIGKILL)
	}
	_ = syscall.Kill(rootPid, syscall.SIGKILL)
	_ = syscall.Kill(-rootPid, syscall.SIGKILL)
}

// procEntry is one process in a snapshot: identity, parentage, and a
// monotonic creation time used to detect recycled identifiers.
type procEntry struct {
	pid       int
	ppid      int
	startTime uint64
}

// collectDescendants returns the descendants of rootPid in breadth-first
// order. A claimed child whose start time predates its parent's is a
// reused PID, not a descendant, and is skipped along with its subtree.
func collectDescendants(procs map[int]procEntry, rootPid int) []int {
	if len(procs) == 0 {
		return nil
	}

	children := make(map[int][]int, len(procs))
	for pid, entry := range procs {
		children[entry.ppid] = append(children[entry.ppid], pid)
	}

	var result []int
	queue := []int{rootPid}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		parentEntry, ok := procs[parent]
		if !ok {
			continue
		}
		for _, child := range children[parent] {
			if procs[child].startTime < parentEntry.startTime {
				continue
			}
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}
