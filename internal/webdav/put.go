package webdav

import (
	"io"
	"net/http"
	"os"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	"github.com/opencloud-eu/davcore/internal/webdav/precond"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// handlePut stages the request body to a temporary file before handing it
// to the backend, and guarantees its removal on every exit path (spec §5's
// resource policy).
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.cfg.TempDir, "davcore-put-*")
	if err != nil {
		return errtypes.ServerError(err.Error())
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r.Body); err != nil {
		tmp.Close()
		return errtypes.ServerError(err.Error())
	}
	if err := tmp.Close(); err != nil {
		return errtypes.ServerError(err.Error())
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return errtypes.ServerError(err.Error())
	}

	node, exists, err := s.lookup(ctx, uri)
	if err != nil {
		return err
	}

	if exists {
		res := resourceOf(ctx, node)
		if _, err := precond.Evaluate(r, res, false); err != nil {
			return err
		}
		file, ok := node.(tree.IFile)
		if !ok {
			return errtypes.Conflict(uri + ": PUT is not allowed on non-files")
		}
		veto, err := s.events.Emit(ctx, events.BeforeWriteContent, uri)
		if err != nil {
			return err
		}
		if veto {
			return nil
		}
		if err := file.Put(ctx, data); err != nil {
			return err
		}
		w.WriteHeader(http.StatusOK)
		return nil
	}

	if node, err := s.createFile(ctx, uri, data); err != nil {
		return err
	} else if node == nil {
		// Vetoed by a beforeBind/beforeCreateFile subscriber, which is
		// responsible for the response.
		return nil
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}
