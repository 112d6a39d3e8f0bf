package webdav

import (
	"net/http"
	"strings"

	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
)

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	node, exists, err := s.lookup(ctx, uri)
	if err != nil {
		return err
	}

	methods := s.allowedMethods(node, exists)
	methods = append(methods, s.plugins.HTTPMethods(uri)...)

	davTokens := append([]string{"1", "3", "extended-mkcol"}, s.plugins.Features()...)

	w.Header().Set(davnet.HeaderAllow, strings.Join(methods, ", "))
	w.Header().Set(davnet.HeaderDav, strings.Join(davTokens, ","))
	w.Header().Set(davnet.HeaderMSAuthorVia, "DAV")
	w.Header().Set(davnet.HeaderAcceptRanges, "bytes")
	w.WriteHeader(http.StatusOK)
	return nil
}

// allowedMethods reports the HTTP verbs the core itself supports for uri,
// given whether it currently resolves to a node.
func (s *Server) allowedMethods(node tree.Node, exists bool) []string {
	if !exists {
		return []string{http.MethodOptions, "MKCOL", http.MethodPut}
	}
	methods := []string{
		http.MethodOptions, "PROPFIND", "PROPPATCH",
		http.MethodDelete, "COPY", "MOVE", "REPORT",
	}
	if _, ok := node.(tree.IFile); ok {
		methods = append(methods, http.MethodGet, http.MethodHead, http.MethodPut)
	}
	return methods
}
