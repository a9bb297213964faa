//go:build windows

package proc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// setSysProcAttr gives the child its own process group so console
// signals do not propagate from the parent.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

func exitCodeFromState(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	return ps.ExitCode()
}

// DescribeExitCode renders an exit code together with its hexadecimal
// form, which is how NTSTATUS-style codes are usually documented.
func DescribeExitCode(code int) string {
	return fmt.Sprintf("exit code %d (0x%08X)", code, uint32(code))
}

// killTree terminates every descendant of rootPid before rootPid
// itself, deepest first, from a toolhelp snapshot of the process table.
// Creation times guard against recycled identifiers: a claimed child
// created before its parent is an unrelated process and is skipped.
func killTree(rootPid int) {
	procs := snapshotProcesses()
	victims := collectDescendantsWindows(procs, rootPid)
	for i := len(victims) - 1; i >= 0; i-- {
		terminatePid(victims[i])
	}
	terminatePid(rootPid)
}

type winProcEntry struct {
	pid      uint32
	ppid     uint32
	creation uint64
}

func snapshotProcesses() map[uint32]winProcEntry {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil
	}
	defer func() { _ = windows.CloseHandle(snapshot) }()

	procs := make(map[uint32]winProcEntry)
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		procs[entry.ProcessID] = winProcEntry{
			pid:      entry.ProcessID,
			ppid:     entry.ParentProcessID,
			creation: processCreationTime(entry.ProcessID),
		}
	}
	return procs
}

// processCreationTime returns the process creation time as a FILETIME
// tick count, or 0 if the process cannot be queried.
func processCreationTime(pid uint32) uint64 {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return 0
	}
	defer func() { _ = windows.CloseHandle(handle) }()

	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(handle, &creation, &exit, &kernel, &user); err != nil {
		return 0
	}
	return uint64(creation.HighDateTime)<<32 | uint64(creation.LowDateTime)
}

func collectDescendantsWindows(procs map[uint32]winProcEntry, rootPid int) []int {
	if len(procs) == 0 {
		return nil
	}

	children := make(map[uint32][]uint32, len(procs))
	for pid, entry := range procs {
		children[entry.ppid] = append(children[entry.ppid], pid)
	}

	var result []int
	queue := []uint32{uint32(rootPid)}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		parentEntry, ok := procs[parent]
		if !ok {
			continue
		}
		for _, child := range children[parent] {
			if procs[child].creation < parentEntry.creation {
				continue
			}
			result = append(result, int(child))
			queue = append(queue, child)
		}
	}
	return result
}

func terminatePid(pid int) {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return
	}
	defer func() { _ = windows.CloseHandle(handle) }()
	_ = windows.TerminateProcess(handle, 1)
}
