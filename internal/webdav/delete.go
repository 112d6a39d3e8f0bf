package webdav

import (
	"context"
	"net/http"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// deletable is satisfied by any node capable of removing itself: every
// ICollection already carries Delete, and a leaf backend's file node is
// expected to implement it too even though IFile itself does not declare
// it, since deletion is a node-level operation rather than collection-only
// in practice.
type deletable interface {
	Delete(ctx context.Context) error
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	node, exists, err := s.lookup(ctx, uri)
	if err != nil {
		return err
	}
	if !exists {
		return errtypes.NotFound(uri)
	}

	veto, err := s.events.Emit(ctx, events.BeforeUnbind, uri)
	if err != nil {
		return err
	}
	if veto {
		return nil
	}

	d, ok := node.(deletable)
	if !ok {
		return errtypes.MethodNotAllowed(uri + " cannot be deleted")
	}
	if err := d.Delete(ctx); err != nil {
		return err
	}

	w.Header().Set(davnet.HeaderContentLength, "0")
	w.WriteHeader(http.StatusNoContent)
	return nil
}
