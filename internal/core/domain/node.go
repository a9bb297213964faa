// Package domain contains the core domain models for the execution graph:
// nodes, dependency resolution, and command line templating.
package domain

import (
	"strings"
	"sync/atomic"
)

// NodeKind identifies the concrete type of a graph node.
type NodeKind int

const (
	// KindFile is a plain file reference node.
	KindFile NodeKind = iota
	// KindDirList is a directory-listing node.
	KindDirList
	// KindExec is an external-tool execution node.
	KindExec
)

// String returns the human-readable kind name used in diagnostics.
func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindDirList:
		return "DirectoryListing"
	case KindExec:
		return "Exec"
	default:
		return "Unknown"
	}
}

// Node is a unit in the dependency graph, identified by name.
// For file and exec nodes the name is a filesystem path.
type Node interface {
	Name() InternedString
	Kind() NodeKind
}

// ProducesFile reports whether a node stands for a file on disk.
// Exec nodes produce their output artifact, so they count as files
// when referenced as an input of another node.
func ProducesFile(n Node) bool {
	return n.Kind() == KindFile || n.Kind() == KindExec
}

// FileNode represents a file on disk, either a source file or one
// discovered through a directory listing.
type FileNode struct {
	name InternedString
}

// NewFileNode creates a FileNode for the given path.
func NewFileNode(path string) *FileNode {
	return &FileNode{name: NewInternedString(path)}
}

// Name returns the file path.
func (n *FileNode) Name() InternedString { return n.name }

// Kind returns KindFile.
func (n *FileNode) Kind() NodeKind { return KindFile }

// DirScanSpec describes one directory scan: where to look, whether to
// recurse, and which entries to keep.
type DirScanSpec struct {
	// Path is the root directory of the scan.
	Path string
	// Recurse enables descending into subdirectories.
	Recurse bool
	// Patterns are include patterns matched against file base names.
	// Empty means "match all".
	Patterns []string
	// ExcludePaths are directory paths pruned from the scan.
	ExcludePaths []string
	// ExcludedFiles are individual file paths dropped from the listing.
	ExcludedFiles []string
	// ExcludePatterns are exclude patterns matched against file base names.
	ExcludePatterns []string
}

// ListingName derives the unique node name for this scan configuration.
// Two scans with identical configuration share one listing node.
func (s DirScanSpec) ListingName() string {
	var b strings.Builder
	b.WriteString(s.Path)
	b.WriteByte('|')
	if s.Recurse {
		b.WriteString("recurse")
	}
	for _, p := range s.Patterns {
		b.WriteByte('|')
		b.WriteString(p)
	}
	for _, p := range s.ExcludePaths {
		b.WriteString("|-path:")
		b.WriteString(p)
	}
	for _, f := range s.ExcludedFiles {
		b.WriteString("|-file:")
		b.WriteString(f)
	}
	for _, p := range s.ExcludePatterns {
		b.WriteString("|-glob:")
		b.WriteString(p)
	}
	return b.String()
}

// DirListNode represents the enumerated contents of a filesystem location.
// The file list is produced by an external resolver and swapped in whole,
// so concurrent readers never observe a partially built listing.
type DirListNode struct {
	name  InternedString
	spec  DirScanSpec
	files atomic.Pointer[[]string]
}

// NewDirListNode creates a listing node for the given scan specification.
func NewDirListNode(spec DirScanSpec) *DirListNode {
	return &DirListNode{
		name: NewInternedString(spec.ListingName()),
		spec: spec,
	}
}

// Name returns the derived listing name.
func (n *DirListNode) Name() InternedString { return n.name }

// Kind returns KindDirList.
func (n *DirListNode) Kind() NodeKind { return KindDirList }

// Spec returns the scan specification this listing was created from.
func (n *DirListNode) Spec() DirScanSpec { return n.spec }

// SetFiles atomically replaces the resolved file list.
func (n *DirListNode) SetFiles(files []string) {
	n.files.Store(&files)
}

// Files returns the resolved file list in listing order,
// or nil if the listing has not been resolved yet.
func (n *DirListNode) Files() []string {
	p := n.files.Load()
	if p == nil {
		return nil
	}
	return *p
}
