package webdav

import (
	"net/http"
	"strconv"

	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// handleHead composes the same headers as GET without a body. Unlike GET, a
// target that isn't a file responds 200 with no headers rather than 501 —
// a deliberate divergence for broad client compatibility (legacy Office
// clients probe HEAD before PROPFIND).
func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) error {
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

	file, ok := node.(tree.IFile)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	headers, err := getHTTPHeaders(ctx, node)
	if err != nil {
		return err
	}
	if _, ok := headers[davnet.HeaderContentType]; !ok {
		headers[davnet.HeaderContentType] = "application/octet-stream"
	}
	for name, value := range headers {
		w.Header().Set(name, value)
	}
	if _, ok := headers[davnet.HeaderContentLength]; !ok {
		if size, err := file.Size(ctx); err == nil {
			w.Header().Set(davnet.HeaderContentLength, strconv.FormatInt(size, 10))
		}
	}
	w.Header().Set(davnet.HeaderAcceptRanges, "bytes")
	w.WriteHeader(http.StatusOK)
	return nil
}
