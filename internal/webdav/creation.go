package webdav

import (
	"context"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// createFile implements spec §4.7's createFile(uri, bytes): split
// parent/name, fire the bind events (either may veto), resolve the parent
// collection and create the child.
func (s *Server) createFile(ctx context.Context, uri string, data []byte) (tree.Node, error) {
	parentPath, name := davnet.SplitPath(uri)

	veto, err := s.events.Emit(ctx, events.BeforeBind, uri)
	if err != nil {
		return nil, err
	}
	if veto {
		return nil, nil
	}
	veto, err = s.events.Emit(ctx, events.BeforeCreateFile, uri, data)
	if err != nil {
		return nil, err
	}
	if veto {
		return nil, nil
	}

	parent, exists, err := s.lookup(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errtypes.Conflict(parentPath + " does not exist")
	}
	coll, ok := parent.(tree.ICollection)
	if !ok {
		return nil, errtypes.Conflict(parentPath + " is not a collection")
	}

	node, err := coll.CreateFile(ctx, name, data)
	if err != nil {
		return nil, err
	}

	if _, err := s.events.Emit(ctx, events.AfterBind, uri); err != nil {
		return nil, err
	}
	return node, nil
}

// createCollection implements spec §4.7's createCollection(uri,
// resourceTypes, properties): the non-extended path is create-then-patch
// with rollback on property failure; an IExtendedCollection parent instead
// performs both atomically.
func (s *Server) createCollection(ctx context.Context, uri string, resourceTypes []string, properties map[string]string) (tree.Node, error) {
	if !hasResourceType(resourceTypes, davnet.Clark(davnet.NsDav, "collection")) {
		return nil, errtypes.InvalidResourceType(uri + " resourcetype must include {DAV:}collection")
	}

	parentPath, name := davnet.SplitPath(uri)
	parent, exists, err := s.lookup(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errtypes.Conflict(parentPath + " does not exist")
	}
	coll, ok := parent.(tree.ICollection)
	if !ok {
		return nil, errtypes.Conflict(parentPath + " is not a collection")
	}

	if _, err := coll.Child(ctx, name); err == nil {
		return nil, errtypes.MethodNotAllowed(uri + " already exists")
	} else if err != tree.ErrNotFound {
		return nil, err
	}

	veto, err := s.events.Emit(ctx, events.BeforeBind, uri)
	if err != nil {
		return nil, err
	}
	if veto {
		return nil, nil
	}

	if ext, ok := parent.(tree.IExtendedCollection); ok {
		props := make(map[string]any, len(properties))
		for k, v := range properties {
			props[k] = v
		}
		node, err := ext.CreateExtendedCollection(ctx, name, resourceTypes, props)
		if err != nil {
			return nil, err
		}
		if _, err := s.events.Emit(ctx, events.AfterBind, uri); err != nil {
			return nil, err
		}
		return node, nil
	}

	for _, rt := range resourceTypes {
		if rt != davnet.Clark(davnet.NsDav, "collection") {
			return nil, errtypes.InvalidResourceType(uri + ": unsupported resourcetype " + rt)
		}
	}

	node, err := coll.CreateDirectory(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(properties) > 0 {
		result, err := s.updateProperties(ctx, uri, propertyOpsFromMap(properties))
		if err != nil || !result.success() {
			// Roll back: the collection was created but its properties
			// could not all be applied.
			if _, unbindErr := s.events.Emit(ctx, events.BeforeUnbind, uri); unbindErr == nil {
				_ = deleteNode(ctx, node)
			}
			if err != nil {
				return nil, err
			}
			return nil, errtypes.ServerError(uri + ": property initialization failed")
		}
	}

	if _, err := s.events.Emit(ctx, events.AfterBind, uri); err != nil {
		return nil, err
	}
	return node, nil
}

func hasResourceType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func deleteNode(ctx context.Context, node tree.Node) error {
	if d, ok := node.(deletable); ok {
		return d.Delete(ctx)
	}
	return nil
}

