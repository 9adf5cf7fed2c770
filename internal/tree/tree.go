// Package tree builds the directory navigation tree lazily: a directory's
// children are read from the filesystem only when the node is first
// expanded.
package tree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one directory listing item as reported by a Lister.
type Entry struct {
	Name  string
	IsDir bool
}

// Lister abstracts directory reads so tests can count and fail them.
type Lister interface {
	// List returns the entries of a directory.
	List(path string) ([]Entry, error)
	// Probe reports whether a directory is readable without listing it
	// fully.
	Probe(path string) error
}

// OSLister reads the real filesystem.
type OSLister struct{}

func (OSLister) List(path string) ([]Entry, error) {
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ents))
	for _, e := range ents {
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (OSLister) Probe(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	f.Close()
	return nil
}

// Node is one tree entry. Directories start unloaded; Err marks a placeholder
// for a directory that could not be read.
type Node struct {
	Path  string
	Name  string
	IsDir bool
	Err   error

	loaded   bool
	children []*Node
}

// Loaded reports whether the node's children have been read.
func (n *Node) Loaded() bool { return n.loaded }

// Children returns the already-loaded children without touching the
// filesystem.
func (n *Node) Children() []*Node { return n.children }

// Loader expands directory nodes on demand.
type Loader struct {
	lister     Lister
	showHidden bool
}

// NewLoader creates a loader over the real filesystem.
func NewLoader() *Loader {
	return &Loader{lister: OSLister{}}
}

// NewLoaderWith creates a loader with a custom lister.
func NewLoaderWith(l Lister) *Loader {
	return &Loader{lister: l}
}

// SetShowHidden controls whether dotfiles appear in expansions. Changing it
// does not reload already-expanded nodes.
func (l *Loader) SetShowHidden(show bool) { l.showHidden = show }

// Root creates the root node for a directory path.
func (l *Loader) Root(path string) (*Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	return &Node{
		Path:  abs,
		Name:  filepath.Base(abs),
		IsDir: info.IsDir(),
	}, nil
}

// Expand loads a directory node's children. It is idempotent: an
// already-loaded node returns its existing children with no filesystem
// access. Children are ordered directories first, then case-insensitively by
// name; the sort is stable. A directory that cannot be listed yields a
// single error placeholder child, and unreadable subdirectories are marked
// with Err while their readable siblings load normally.
func (l *Loader) Expand(n *Node) []*Node {
	if !n.IsDir {
		return nil
	}
	if n.loaded {
		return n.children
	}

	entries, err := l.lister.List(n.Path)
	if err != nil {
		n.children = []*Node{{
			Path: n.Path,
			Name: "(unreadable)",
			Err:  err,
		}}
		n.loaded = true
		return n.children
	}

	children := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if !l.showHidden && strings.HasPrefix(e.Name, ".") {
			continue
		}
		child := &Node{
			Path:  filepath.Join(n.Path, e.Name),
			Name:  e.Name,
			IsDir: e.IsDir,
		}
		if e.IsDir {
			// Surface permission problems at listing time so the UI can
			// render the placeholder without expanding first.
			if err := l.lister.Probe(child.Path); err != nil {
				child.Err = err
			}
		}
		children = append(children, child)
	}

	sort.SliceStable(children, func(i, j int) bool {
		if children[i].IsDir != children[j].IsDir {
			return children[i].IsDir
		}
		return strings.ToLower(children[i].Name) < strings.ToLower(children[j].Name)
	})

	n.children = children
	n.loaded = true
	return children
}

// Collapse unloads a node so the next expand re-reads the directory. Used
// when the watcher reports changes beneath it.
func (l *Loader) Collapse(n *Node) {
	n.loaded = false
	n.children = nil
}
