package proc

import "sync/atomic"

// AbortFlag is a cancellation token observed by polling. A nil flag is
// valid and never reports aborted.
type AbortFlag struct {
	set atomic.Bool
}

// NewAbortFlag creates an unset AbortFlag.
func NewAbortFlag() *AbortFlag {
	return &AbortFlag{}
}

// Set requests cancellation. Setting is one-way and idempotent.
func (f *AbortFlag) Set() {
	if f != nil {
		f.set.Store(true)
	}
}

// Aborted reports whether cancellation was requested.
func (f *AbortFlag) Aborted() bool {
	return f != nil && f.set.Load()
}

// AbortCause tells why a process was asked to stop.
type AbortCause int

const (
	// AbortNone means no cancellation was requested.
	AbortNone AbortCause = iota
	// AbortMain means the whole build is shutting down.
	AbortMain
	// AbortLocal means this operation alone was cancelled.
	AbortLocal
)

// String returns the cause name used in diagnostics.
func (c AbortCause) String() string {
	switch c {
	case AbortMain:
		return "main abort"
	case AbortLocal:
		return "local abort"
	default:
		return "none"
	}
}

// AbortSet composes the two-tier cancellation signals: the process-wide
// main flag and the per-operation local flag. Either flag aborts.
type AbortSet struct {
	main  *AbortFlag
	local *AbortFlag
}

// NewAbortSet creates an AbortSet over the given flags. Both may be nil.
func NewAbortSet(main, local *AbortFlag) AbortSet {
	return AbortSet{main: main, local: local}
}

// Cause returns why cancellation was requested, preferring the
// process-wide signal, or AbortNone.
func (s AbortSet) Cause() AbortCause {
	if s.main.Aborted() {
		return AbortMain
	}
	if s.local.Aborted() {
		return AbortLocal
	}
	return AbortNone
}

// Aborted reports whether either flag is set.
func (s AbortSet) Aborted() bool {
	return s.Cause() != AbortNone
}
