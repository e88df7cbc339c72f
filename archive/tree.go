package archive

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/mitterdoo/brdb/internal/brzerr"
)

// Node is either a *Folder or a *File.
type Node interface {
	Name() string
	Parent() *Folder
}

// Folder is a directory node. The root folder has an empty name and a nil
// parent.
type Folder struct {
	name     string
	parent   *Folder
	children map[string]Node
	order    []string // insertion order, for stable Ls output
}

func newFolder(name string, parent *Folder) *Folder {
	return &Folder{name: name, parent: parent, children: make(map[string]Node)}
}

func (f *Folder) Name() string    { return f.name }
func (f *Folder) Parent() *Folder { return f.parent }

func (f *Folder) insert(name string, n Node) error {
	if _, exists := f.children[name]; exists {
		return xerrors.Errorf("archive: folder %q: duplicate child %q: %w", f.path(), name, brzerr.ErrFormat)
	}
	f.children[name] = n
	f.order = append(f.order, name)
	return nil
}

// path reconstructs this folder's path from the root, for error messages.
func (f *Folder) path() string {
	if f.parent == nil {
		return "/"
	}
	var parts []string
	for n := f; n.parent != nil; n = n.parent {
		parts = append([]string{n.name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

// File is a regular file node holding its fully decompressed content.
type File struct {
	name    string
	parent  *Folder
	content []byte
}

func (f *File) Name() string    { return f.name }
func (f *File) Parent() *Folder { return f.parent }

// Content returns the file's decoded bytes.
func (f *File) Content() []byte { return f.content }

// Tree is the in-memory directory tree reconstructed from a BRZ archive's
// index.
type Tree struct {
	root *Folder
}

// Root returns the synthetic root folder.
func (t *Tree) Root() *Folder { return t.root }

// splitPath normalizes a path into its non-empty components: '/'
// separated, leading and trailing '/' stripped, "" and "/" both denoting
// the root.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Locate walks path's components from the root, returning brzerr.ErrNotFound
// if any component is missing.
func (t *Tree) Locate(path string) (Node, error) {
	parts := splitPath(path)
	var cur Node = t.root
	for _, part := range parts {
		folder, ok := cur.(*Folder)
		if !ok {
			return nil, xerrors.Errorf("archive: %q: %w", path, brzerr.ErrNotAFolder)
		}
		child, ok := folder.children[part]
		if !ok {
			return nil, xerrors.Errorf("archive: %q: %w", path, brzerr.ErrNotFound)
		}
		cur = child
	}
	return cur, nil
}

// Exists reports whether path addresses any node.
func (t *Tree) Exists(path string) bool {
	_, err := t.Locate(path)
	return err == nil
}

// IsFolder reports whether path addresses a folder.
func (t *Tree) IsFolder(path string) (bool, error) {
	n, err := t.Locate(path)
	if err != nil {
		return false, err
	}
	_, ok := n.(*Folder)
	return ok, nil
}

// Ls lists the names of path's immediate children. path must address a
// folder.
func (t *Tree) Ls(path string) ([]string, error) {
	n, err := t.Locate(path)
	if err != nil {
		return nil, err
	}
	folder, ok := n.(*Folder)
	if !ok {
		return nil, xerrors.Errorf("archive: %q: %w", path, brzerr.ErrNotAFolder)
	}
	names := make([]string, len(folder.order))
	copy(names, folder.order)
	return names, nil
}

// Open returns the content of the file at path. path must exist and be a
// file.
func (t *Tree) Open(path string) ([]byte, error) {
	n, err := t.Locate(path)
	if err != nil {
		return nil, err
	}
	file, ok := n.(*File)
	if !ok {
		return nil, xerrors.Errorf("archive: %q: %w", path, brzerr.ErrIsAFolder)
	}
	return file.content, nil
}

// Create adds a new file with the given content under path's parent
// folder, which must already exist. This is the write-mode counterpart
// to Open: a nonexistent leaf is created under its existing parent.
func (t *Tree) Create(path string, content []byte) (*File, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, xerrors.Errorf("archive: cannot create root: %w", brzerr.ErrValue)
	}
	parentPath := "/" + strings.Join(parts[:len(parts)-1], "/")
	leaf := parts[len(parts)-1]

	parentNode, err := t.Locate(parentPath)
	if err != nil {
		return nil, err
	}
	parent, ok := parentNode.(*Folder)
	if !ok {
		return nil, xerrors.Errorf("archive: %q: %w", parentPath, brzerr.ErrNotAFolder)
	}

	file := &File{name: leaf, parent: parent, content: content}
	if err := parent.insert(leaf, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Dump materializes the tree on a host filesystem under destination, which
// must not already exist, via a breadth-first walk.
func (t *Tree) Dump(destination string) error {
	if _, err := os.Stat(destination); err == nil {
		return xerrors.Errorf("archive: dump: %q already exists", destination)
	} else if !os.IsNotExist(err) {
		return xerrors.Errorf("archive: dump: stat %q: %v", destination, err)
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return xerrors.Errorf("archive: dump: mkdir %q: %v", destination, err)
	}

	type queued struct {
		folder *Folder
		path   string
	}
	queue := []queued{{folder: t.root, path: destination}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, name := range cur.folder.order {
			child := cur.folder.children[name]
			childPath := filepath.Join(cur.path, name)
			switch x := child.(type) {
			case *Folder:
				if err := os.Mkdir(childPath, 0o755); err != nil {
					return xerrors.Errorf("archive: dump: mkdir %q: %v", childPath, err)
				}
				queue = append(queue, queued{folder: x, path: childPath})
			case *File:
				if err := os.WriteFile(childPath, x.content, 0o644); err != nil {
					return xerrors.Errorf("archive: dump: write %q: %v", childPath, err)
				}
			}
		}
	}
	return nil
}
