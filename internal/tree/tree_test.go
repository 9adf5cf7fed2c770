package tree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeLister serves canned listings and counts filesystem reads.
type fakeLister struct {
	entries    map[string][]Entry
	unreadable map[string]bool
	listCalls  map[string]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		entries:    make(map[string][]Entry),
		unreadable: make(map[string]bool),
		listCalls:  make(map[string]int),
	}
}

func (f *fakeLister) List(path string) ([]Entry, error) {
	f.listCalls[path]++
	if f.unreadable[path] {
		return nil, errors.New("permission denied")
	}
	return f.entries[path], nil
}

func (f *fakeLister) Probe(path string) error {
	if f.unreadable[path] {
		return errors.New("permission denied")
	}
	return nil
}

func TestExpandOrdersDirsFirstThenCaseInsensitive(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{
		{Name: "zebra.txt"},
		{Name: "Apple", IsDir: true},
		{Name: "banana.md"},
		{Name: "cherry", IsDir: true},
		{Name: "README"},
	}

	loader := NewLoaderWith(l)
	root := &Node{Path: "/root", Name: "root", IsDir: true}
	children := loader.Expand(root)

	want := []string{"Apple", "cherry", "banana.md", "README", "zebra.txt"}
	if len(children) != len(want) {
		t.Fatalf("children = %d, want %d", len(children), len(want))
	}
	for i, name := range want {
		if children[i].Name != name {
			t.Errorf("children[%d] = %q, want %q", i, children[i].Name, name)
		}
	}
}

func TestExpandIsIdempotent(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{{Name: "a.txt"}, {Name: "sub", IsDir: true}}

	loader := NewLoaderWith(l)
	root := &Node{Path: "/root", Name: "root", IsDir: true}

	first := loader.Expand(root)
	second := loader.Expand(root)

	if l.listCalls["/root"] != 1 {
		t.Errorf("List ran %d times, want 1", l.listCalls["/root"])
	}
	if len(first) != len(second) {
		t.Errorf("second Expand returned different children")
	}
	if !root.Loaded() {
		t.Error("node should report loaded after Expand")
	}
}

func TestExpandFileIsNoop(t *testing.T) {
	loader := NewLoaderWith(newFakeLister())
	file := &Node{Path: "/root/a.txt", Name: "a.txt"}

	if children := loader.Expand(file); children != nil {
		t.Errorf("expanding a file returned %d children", len(children))
	}
}

func TestExpandUnreadableDirYieldsPlaceholder(t *testing.T) {
	l := newFakeLister()
	l.unreadable["/root/secret"] = true

	loader := NewLoaderWith(l)
	dir := &Node{Path: "/root/secret", Name: "secret", IsDir: true}
	children := loader.Expand(dir)

	if len(children) != 1 {
		t.Fatalf("children = %d, want single placeholder", len(children))
	}
	if children[0].Err == nil {
		t.Error("placeholder should carry the listing error")
	}
	if children[0].Name != "(unreadable)" {
		t.Errorf("placeholder name = %q", children[0].Name)
	}
}

func TestExpandMarksUnreadableSubdirs(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{
		{Name: "open", IsDir: true},
		{Name: "locked", IsDir: true},
		{Name: "note.txt"},
	}
	l.unreadable["/root/locked"] = true

	loader := NewLoaderWith(l)
	root := &Node{Path: "/root", Name: "root", IsDir: true}
	children := loader.Expand(root)

	if len(children) != 3 {
		t.Fatalf("children = %d, want 3 (siblings load normally)", len(children))
	}
	byName := map[string]*Node{}
	for _, c := range children {
		byName[c.Name] = c
	}
	if byName["locked"].Err == nil {
		t.Error("unreadable subdir should be marked")
	}
	if byName["open"].Err != nil {
		t.Error("readable sibling should not be marked")
	}
}

func TestExpandHidesDotfilesByDefault(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{
		{Name: ".git", IsDir: true},
		{Name: ".env"},
		{Name: "main.go"},
	}

	loader := NewLoaderWith(l)
	root := &Node{Path: "/root", Name: "root", IsDir: true}
	children := loader.Expand(root)

	if len(children) != 1 || children[0].Name != "main.go" {
		t.Errorf("children = %v, want only main.go", names(children))
	}
}

func TestExpandShowHidden(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{
		{Name: ".env"},
		{Name: "main.go"},
	}

	loader := NewLoaderWith(l)
	loader.SetShowHidden(true)
	root := &Node{Path: "/root", Name: "root", IsDir: true}
	children := loader.Expand(root)

	if len(children) != 2 {
		t.Errorf("children = %v, want dotfile included", names(children))
	}
}

func TestCollapseForcesReread(t *testing.T) {
	l := newFakeLister()
	l.entries["/root"] = []Entry{{Name: "old.txt"}}

	loader := NewLoaderWith(l)
	root := &Node{Path: "/root", Name: "root", IsDir: true}
	loader.Expand(root)

	l.entries["/root"] = []Entry{{Name: "new.txt"}}
	loader.Collapse(root)

	if root.Loaded() {
		t.Error("collapsed node should report unloaded")
	}
	children := loader.Expand(root)
	if len(children) != 1 || children[0].Name != "new.txt" {
		t.Errorf("children = %v, want re-read listing", names(children))
	}
	if l.listCalls["/root"] != 2 {
		t.Errorf("List ran %d times, want 2", l.listCalls["/root"])
	}
}

func TestRootRealFilesystem(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("creating subdir: %v", err)
	}

	loader := NewLoader()
	root, err := loader.Root(dir)
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if !root.IsDir {
		t.Error("root should be a directory")
	}

	children := loader.Expand(root)
	if len(children) != 2 {
		t.Fatalf("children = %v, want sub and f.txt", names(children))
	}
	if children[0].Name != "sub" || !children[0].IsDir {
		t.Errorf("children[0] = %q, want directory first", children[0].Name)
	}
	if children[1].Name != "f.txt" {
		t.Errorf("children[1] = %q, want f.txt", children[1].Name)
	}
}

func TestRootMissingPath(t *testing.T) {
	loader := NewLoader()
	if _, err := loader.Root("/nonexistent/nowhere"); err == nil {
		t.Error("Root() of a missing path should fail")
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
