package webdav

import (
	"context"
	"net/http"
	"strings"

	"github.com/opencloud-eu/davcore/internal/webdav/dom"
	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/precond"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/appctx"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// handlerFunc is a method handler. Handlers write the success response
// themselves and return nil, or return an error and let wrap convert it.
// They never write a partial response before returning an error (spec §7).
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap adapts a handlerFunc into an http.HandlerFunc: it opens a trace
// span, emits beforeMethod (which may veto), runs fn, and converts any
// returned error into a WebDAV-compliant XML error response.
func (s *Server) wrap(fn handlerFunc, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), name)
		defer span.End()
		r = r.WithContext(ctx)

		veto, err := s.events.Emit(ctx, events.BeforeMethod, r.Method, r.URL.Path)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if veto {
			return
		}

		if err := fn(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// handleUnknownMethod fires unknownMethod for any verb chi didn't route
// to a registered method handler; an unhandled one fails 501 (spec §4.1).
func (s *Server) handleUnknownMethod(w http.ResponseWriter, r *http.Request) error {
	veto, err := s.events.Emit(r.Context(), events.UnknownMethod, r.Method)
	if err != nil {
		return err
	}
	if veto {
		return nil
	}
	return errtypes.NotImplemented("unrecognized method " + r.Method)
}

// resolveURI derives the server-relative path of r against the server's
// base URI (spec §4.2).
func (s *Server) resolveURI(r *http.Request) (string, error) {
	uri, err := davnet.CalculateURI(s.cfg.BaseURI, r.URL.EscapedPath())
	if err != nil {
		return "", errtypes.Forbidden(err.Error())
	}
	return uri, nil
}

// lookup resolves uri against the tree, returning (node, true, nil) if it
// exists, (nil, false, nil) if it does not, or a non-nil error for any
// other backend failure.
func (s *Server) lookup(ctx context.Context, uri string) (tree.Node, bool, error) {
	node, err := s.tree.GetNodeForPath(ctx, uri)
	if err == nil {
		return node, true, nil
	}
	if err == tree.ErrNotFound {
		return nil, false, nil
	}
	return nil, false, err
}

// resourceOf adapts a possibly-nil node into a precond.Resource.
func resourceOf(ctx context.Context, node tree.Node) precond.Resource {
	if node == nil {
		return precond.Resource{}
	}
	res := precond.Resource{Exists: true}
	if f, ok := node.(tree.IFile); ok {
		if etag, err := f.ETag(ctx); err == nil {
			res.ETag = etag
		}
		if lm, err := f.LastModified(ctx); err == nil {
			res.LastModified = lm
		}
	}
	return res
}

// ifRangeMatches reports whether an If-Range header, if present, matches
// res's current ETag or Last-Modified. An absent If-Range always matches
// (the Range header then applies unconditionally).
func ifRangeMatches(r *http.Request, res precond.Resource) bool {
	header := r.Header.Get(davnet.HeaderIfRange)
	if header == "" {
		return true
	}
	if t, err := http.ParseTime(header); err == nil {
		return !res.LastModified.After(t)
	}
	return header == res.ETag || header == `"`+res.ETag+`"`
}

// hrefFor renders the full response href for a server-relative path,
// prefixed with the server's base URI. trailingSlash is forced on for
// collections, per the invariant that a collection's href always ends in
// "/" and a file's never does.
func (s *Server) hrefFor(uri string, trailingSlash bool) string {
	full := s.cfg.BaseURI + uri
	if trailingSlash {
		if !strings.HasSuffix(full, "/") {
			full += "/"
		}
	}
	return full
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := errtypes.AsError(err)
	logger := appctx.GetLogger(r.Context())
	if e.StatusCode() >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("webdav: request failed")
	} else {
		logger.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("webdav: request failed")
	}

	for name, value := range e.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set(davnet.HeaderContentType, "application/xml; charset=utf-8")
	w.WriteHeader(e.StatusCode())
	_ = dom.WriteError(w, e.SabreException(), e.Error())
}
