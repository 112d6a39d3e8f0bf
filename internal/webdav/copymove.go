package webdav

import (
	"context"
	"net/http"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// copyMoveInfo is the resolved shape of a COPY/MOVE request, per spec §4.6.
type copyMoveInfo struct {
	Source            string
	Destination       string
	DestinationExists bool
	DestinationNode   tree.Node
	Overwrite         bool
}

func (s *Server) getCopyAndMoveInfo(ctx context.Context, r *http.Request, source string) (copyMoveInfo, error) {
	destHeader := r.Header.Get(davnet.HeaderDestination)
	if destHeader == "" {
		return copyMoveInfo{}, errtypes.BadRequest("Destination header is required")
	}

	overwriteHeader := r.Header.Get(davnet.HeaderOverwrite)
	var overwrite bool
	switch overwriteHeader {
	case "", "T":
		overwrite = true
	case "F":
		overwrite = false
	default:
		return copyMoveInfo{}, errtypes.BadRequest("Overwrite header must be T or F")
	}

	destURI, err := davnet.CalculateURI(s.cfg.BaseURI, destHeader)
	if err != nil {
		return copyMoveInfo{}, errtypes.Forbidden(err.Error())
	}

	parentPath, _ := davnet.SplitPath(destURI)
	parent, exists, err := s.lookup(ctx, parentPath)
	if err != nil {
		return copyMoveInfo{}, err
	}
	if !exists {
		return copyMoveInfo{}, errtypes.Conflict(parentPath + " does not exist")
	}
	if _, ok := parent.(tree.ICollection); !ok {
		return copyMoveInfo{}, errtypes.UnsupportedMediaType(parentPath + " is not a collection")
	}

	destNode, destExists, err := s.lookup(ctx, destURI)
	if err != nil {
		return copyMoveInfo{}, err
	}
	if destExists && !overwrite {
		return copyMoveInfo{}, errtypes.PreconditionFailed(destURI + " exists and Overwrite is F")
	}

	return copyMoveInfo{
		Source:            source,
		Destination:       destURI,
		DestinationExists: destExists,
		DestinationNode:   destNode,
		Overwrite:         overwrite,
	}, nil
}

// treeOp is either s.tree.Copy or s.tree.Move.
type treeOp func(ctx context.Context, src, dst string) error

// copyOrMove runs the shared overwrite-then-bind sequence for COPY/MOVE.
// handled is false if a subscriber vetoed; the subscriber then owns the
// response and the caller must not write one.
func (s *Server) copyOrMove(ctx context.Context, info copyMoveInfo, op treeOp) (status int, handled bool, err error) {
	status = http.StatusCreated

	if info.DestinationExists {
		veto, err := s.events.Emit(ctx, events.BeforeUnbind, info.Destination)
		if err != nil {
			return 0, false, err
		}
		if veto {
			return 0, false, nil
		}
		if err := deleteNode(ctx, info.DestinationNode); err != nil {
			return 0, false, err
		}
		status = http.StatusNoContent
	}

	veto, err := s.events.Emit(ctx, events.BeforeBind, info.Destination)
	if err != nil {
		return 0, false, err
	}
	if veto {
		return 0, false, nil
	}

	if err := op(ctx, info.Source, info.Destination); err != nil {
		return 0, false, err
	}

	if _, err := s.events.Emit(ctx, events.AfterBind, info.Destination); err != nil {
		return 0, false, err
	}

	return status, true, nil
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) error {
	return s.handleCopyOrMove(w, r, s.tree.Copy)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) error {
	return s.handleCopyOrMove(w, r, s.tree.Move)
}

func (s *Server) handleCopyOrMove(w http.ResponseWriter, r *http.Request, op treeOp) error {
	ctx := r.Context()
	source, err := s.resolveURI(r)
	if err != nil {
		return err
	}
	if _, exists, err := s.lookup(ctx, source); err != nil {
		return err
	} else if !exists {
		return errtypes.NotFound(source)
	}

	info, err := s.getCopyAndMoveInfo(ctx, r, source)
	if err != nil {
		return err
	}

	status, handled, err := s.copyOrMove(ctx, info, op)
	if err != nil {
		return err
	}
	if !handled {
		return nil
	}
	w.WriteHeader(status)
	return nil
}
