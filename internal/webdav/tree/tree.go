// Package tree defines the abstract resource tree the dispatcher consumes.
// Concrete backends (a local filesystem, a cloud object store, ...) are
// external collaborators; this package only names the contract.
package tree

import (
	"context"
	"time"
)

// Node is a resource in the tree. Every node exposes a name; everything
// else is a capability, queried via a type assertion against one of the
// I* interfaces below rather than asserted up front. A handler that needs
// IFile on a node that isn't one fails with MethodNotAllowed/NotImplemented
// — see package webdav's capability lookups.
type Node interface {
	Name() string
}

// Capability is one of the capability kinds a Node may additionally
// implement. It exists so callers that want an enumerated capability set
// (e.g. to build OPTIONS' Allow header) don't need to special-case each
// interface by name.
type Capability int

const (
	CapFile Capability = iota
	CapCollection
	CapProperties
	CapQuota
	CapExtendedCollection
)

// IFile is the capability set of a leaf resource.
type IFile interface {
	Node
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, data []byte) error
	Size(ctx context.Context) (int64, error)
	ETag(ctx context.Context) (string, error)
	ContentType(ctx context.Context) (string, error)
	LastModified(ctx context.Context) (time.Time, error)
}

// ICollection is the capability set of a container resource.
type ICollection interface {
	Node
	Child(ctx context.Context, name string) (Node, error)
	Children(ctx context.Context) ([]Node, error)
	CreateFile(ctx context.Context, name string, data []byte) (Node, error)
	CreateDirectory(ctx context.Context, name string) (Node, error)
	Delete(ctx context.Context) error
}

// IProperties is the capability set of a resource that stores arbitrary
// dead properties.
type IProperties interface {
	Node
	// GetProperties returns the requested properties that the node itself
	// knows how to answer, keyed by Clark name. Names the node cannot
	// answer are simply omitted — the caller falls back to built-in
	// providers or 404. A nil names slice means "every property the node
	// currently stores" — how an allprop PROPFIND discovers custom
	// properties it had no name to ask for.
	GetProperties(ctx context.Context, names []string) (map[string]any, error)
	// UpdateProperties applies a set of mutations (value or removal,
	// signalled by a nil value) and reports a per-name outcome. See
	// UpdateResult for the accepted shapes.
	UpdateProperties(ctx context.Context, ops map[string]any) (UpdateResult, error)
}

// UpdateResult is the return shape of IProperties.UpdateProperties, mirroring
// spec.md §4.9: either every property succeeded, every property failed, or
// a status→names mapping is given verbatim.
type UpdateResult struct {
	// AllOK is true if every requested property committed (200).
	AllOK bool
	// AllForbidden is true if every requested property was rejected (403).
	AllForbidden bool
	// ByStatus, when neither AllOK nor AllForbidden is set, maps an HTTP
	// status to the property names that landed there.
	ByStatus map[int][]string
}

// IQuota is the capability set of a resource that can report storage quota.
type IQuota interface {
	Node
	QuotaUsedBytes(ctx context.Context) (int64, error)
	QuotaAvailableBytes(ctx context.Context) (int64, error)
}

// IExtendedCollection is the capability set of a collection that can create
// a child collection and set its initial properties atomically, instead of
// the core's non-atomic createDirectory+updateProperties fallback.
type IExtendedCollection interface {
	ICollection
	CreateExtendedCollection(ctx context.Context, name string, resourceTypes []string, properties map[string]any) (Node, error)
}

// Capabilities reports which capability kinds n additionally implements.
func Capabilities(n Node) []Capability {
	var caps []Capability
	if _, ok := n.(IFile); ok {
		caps = append(caps, CapFile)
	}
	if _, ok := n.(ICollection); ok {
		caps = append(caps, CapCollection)
	}
	if _, ok := n.(IProperties); ok {
		caps = append(caps, CapProperties)
	}
	if _, ok := n.(IQuota); ok {
		caps = append(caps, CapQuota)
	}
	if _, ok := n.(IExtendedCollection); ok {
		caps = append(caps, CapExtendedCollection)
	}
	return caps
}

// HasCapability reports whether n implements the given capability kind.
func HasCapability(n Node, c Capability) bool {
	for _, have := range Capabilities(n) {
		if have == c {
			return true
		}
	}
	return false
}

// Tree is polymorphic over resolving a server-relative path to a node, plus
// copy/move so a backend can implement them more efficiently than a
// recursive walk over Node operations.
type Tree interface {
	// GetNodeForPath resolves path (no leading/trailing slash) to a Node.
	// It returns tree.ErrNotFound if no such resource exists.
	GetNodeForPath(ctx context.Context, path string) (Node, error)
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
}

// ErrNotFound is returned by Tree.GetNodeForPath when path does not resolve
// to any resource.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "tree: node not found" }
