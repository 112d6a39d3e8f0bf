// Package memtree is an in-memory implementation of tree.Tree. It has no
// limits on how much memory it consumes and keeps no durability guarantees;
// it exists for tests and examples, the same role google/go-webdav's memfs
// package plays for golang.org/x/net/webdav-shaped servers.
package memtree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opencloud-eu/davcore/internal/webdav/tree"
)

// Tree is an in-memory tree.Tree. The zero value is not usable; use New.
type Tree struct {
	mu    sync.Mutex
	nodes map[string]*node
}

// New returns an empty Tree containing only the root collection "".
func New() *Tree {
	t := &Tree{nodes: map[string]*node{}}
	t.nodes[""] = &node{tree: t, path: "", isDir: true, modTime: time.Now(), props: map[string]any{}}
	return t
}

type node struct {
	tree    *Tree
	path    string // server-relative, no leading/trailing slash; "" is root
	isDir   bool
	data    []byte
	modTime time.Time
	props   map[string]any
}

func clean(p string) string {
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func (n *node) Name() string {
	if n.path == "" {
		return ""
	}
	return path.Base(n.path)
}

var _ tree.IFile = (*node)(nil)
var _ tree.ICollection = (*node)(nil)
var _ tree.IProperties = (*node)(nil)

func (n *node) Get(ctx context.Context) ([]byte, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if n.isDir {
		return nil, fmt.Errorf("memtree: %q is a collection", n.path)
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out, nil
}

func (n *node) Put(ctx context.Context, data []byte) error {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if n.isDir {
		return fmt.Errorf("memtree: %q is a collection", n.path)
	}
	n.data = append([]byte(nil), data...)
	n.modTime = time.Now()
	return nil
}

func (n *node) Size(ctx context.Context) (int64, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return int64(len(n.data)), nil
}

func (n *node) ETag(ctx context.Context) (string, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	sum := sha256.Sum256(n.data)
	return `"` + hex.EncodeToString(sum[:])[:16] + `"`, nil
}

func (n *node) ContentType(ctx context.Context) (string, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if ct, ok := n.props["{DAV:}getcontenttype"].(string); ok && ct != "" {
		return ct, nil
	}
	return "application/octet-stream", nil
}

func (n *node) LastModified(ctx context.Context) (time.Time, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return n.modTime, nil
}

func (n *node) Child(ctx context.Context, name string) (tree.Node, error) {
	n.tree.mu.Lock()
	childPath := clean(path.Join(n.path, name))
	n.tree.mu.Unlock()
	return n.tree.GetNodeForPath(ctx, childPath)
}

func (n *node) Children(ctx context.Context) ([]tree.Node, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()

	prefix := n.path
	var names []string
	for p, c := range n.tree.nodes {
		if p == n.path {
			continue
		}
		parent := path.Dir(p)
		if parent == "." {
			parent = ""
		}
		if parent == prefix {
			names = append(names, c.path)
		}
	}
	sort.Strings(names)

	out := make([]tree.Node, 0, len(names))
	for _, p := range names {
		out = append(out, n.tree.nodes[p])
	}
	return out, nil
}

func (n *node) CreateFile(ctx context.Context, name string, data []byte) (tree.Node, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if !n.isDir {
		return nil, fmt.Errorf("memtree: %q is not a collection", n.path)
	}
	childPath := clean(path.Join(n.path, name))
	c := &node{tree: n.tree, path: childPath, data: append([]byte(nil), data...), modTime: time.Now(), props: map[string]any{}}
	n.tree.nodes[childPath] = c
	return c, nil
}

func (n *node) CreateDirectory(ctx context.Context, name string) (tree.Node, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if !n.isDir {
		return nil, fmt.Errorf("memtree: %q is not a collection", n.path)
	}
	childPath := clean(path.Join(n.path, name))
	c := &node{tree: n.tree, path: childPath, isDir: true, modTime: time.Now(), props: map[string]any{}}
	n.tree.nodes[childPath] = c
	return c, nil
}

func (n *node) Delete(ctx context.Context) error {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	delete(n.tree.nodes, n.path)
	if n.isDir {
		prefix := n.path + "/"
		for p := range n.tree.nodes {
			if strings.HasPrefix(p, prefix) {
				delete(n.tree.nodes, p)
			}
		}
	}
	return nil
}

// GetProperties returns the requested names, or every stored dead property
// if names is nil — the convention an allprop PROPFIND relies on to
// discover custom properties it didn't know to ask for by name.
func (n *node) GetProperties(ctx context.Context, names []string) (map[string]any, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if names == nil {
		return cloneProps(n.props), nil
	}
	out := map[string]any{}
	for _, name := range names {
		if v, ok := n.props[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

func (n *node) UpdateProperties(ctx context.Context, ops map[string]any) (tree.UpdateResult, error) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	for name, value := range ops {
		if value == nil {
			delete(n.props, name)
			continue
		}
		n.props[name] = value
	}
	return tree.UpdateResult{AllOK: true}, nil
}

// Tree contract.

func (t *Tree) GetNodeForPath(ctx context.Context, p string) (tree.Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[clean(p)]
	if !ok {
		return nil, tree.ErrNotFound
	}
	return n, nil
}

func (t *Tree) Copy(ctx context.Context, src, dst string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	src, dst = clean(src), clean(dst)
	srcPrefix := src + "/"
	for p, n := range t.nodes {
		if p != src && !strings.HasPrefix(p, srcPrefix) {
			continue
		}
		rel := strings.TrimPrefix(p, src)
		newPath := clean(dst + rel)
		clone := &node{
			tree:    t,
			path:    newPath,
			isDir:   n.isDir,
			data:    append([]byte(nil), n.data...),
			modTime: time.Now(),
			props:   cloneProps(n.props),
		}
		t.nodes[newPath] = clone
	}
	return nil
}

func (t *Tree) Move(ctx context.Context, src, dst string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	src, dst = clean(src), clean(dst)
	srcPrefix := src + "/"
	toMove := map[string]*node{}
	for p, n := range t.nodes {
		if p == src || strings.HasPrefix(p, srcPrefix) {
			toMove[p] = n
		}
	}
	for p, n := range toMove {
		rel := strings.TrimPrefix(p, src)
		newPath := clean(dst + rel)
		n.path = newPath
		delete(t.nodes, p)
		t.nodes[newPath] = n
	}
	return nil
}

func cloneProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
