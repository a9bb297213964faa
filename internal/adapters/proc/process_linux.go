//go:build linux

package proc

import (
	"os"
	"strconv"
	"strings"
)

// snapshotProcesses reads the process table from /proc. Entries that
// vanish mid-walk are skipped.
func snapshotProcesses() map[int]procEntry {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	procs := make(map[int]procEntry, len(entries))
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		pe, ok := readStat(pid)
		if ok {
			procs[pid] = pe
		}
	}
	return procs
}

// readStat parses /proc/<pid>/stat. The comm field may contain spaces
// and parentheses, so fields are split after the last ')'. In the
// remainder, index 1 is ppid and index 19 is starttime (clock ticks
// since boot, monotonic and comparable across processes).
func readStat(pid int) (procEntry, bool) {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return procEntry{}, false
	}

	rest := string(data)
	idx := strings.LastIndexByte(rest, ')')
	if idx < 0 || idx+2 > len(rest) {
		return procEntry{}, false
	}
	fields := strings.Fields(rest[idx+1:])
	if len(fields) < 20 {
		return procEntry{}, false
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return procEntry{}, false
	}
	start, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return procEntry{}, false
	}

	return procEntry{pid: pid, ppid: ppid, startTime: start}, true
}
