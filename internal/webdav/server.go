// Package webdav is the request dispatcher and per-verb method handlers
// that sit on top of the abstract tree.Tree contract: the WebDAV core
// itself (spec §4).
package webdav

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	"github.com/opencloud-eu/davcore/internal/webdav/plugin"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
)

// chi only recognizes the nine standard HTTP verbs out of the box;
// Mux.Method panics on anything else unless it was registered first.
func init() {
	chi.RegisterMethod("MKCOL")
	chi.RegisterMethod("COPY")
	chi.RegisterMethod("MOVE")
	chi.RegisterMethod("PROPFIND")
	chi.RegisterMethod("PROPPATCH")
	chi.RegisterMethod("REPORT")
}

// Config is the server's external configuration. It is decoded from a
// generic map[string]interface{} via mapstructure by callers, matching the
// teacher's Config/New(m map[string]interface{}) convention.
type Config struct {
	// BaseURI is the path prefix requests are served under. Always treated
	// as ending in "/"; a value without the trailing slash is normalized by
	// New.
	BaseURI string `mapstructure:"base_uri"`
	// TempDir is where PUT request bodies are staged before being handed to
	// the tree backend. Left empty, os.TempDir() is used.
	TempDir string `mapstructure:"temp_dir"`
}

// Server is a WebDAV core server bound to a single tree.Tree backend and
// plugin set. It owns no mutable state once constructed: the tree,
// event bus, and plugin registry are fixed at New and treated as read-only
// for the remainder of the process, per spec §3's lifecycle invariant.
type Server struct {
	cfg     Config
	tree    tree.Tree
	events  *events.Bus
	plugins *plugin.Registry
	tracer  trace.Tracer
}

// New constructs a Server. plugins may be nil for a server with no
// extensions registered.
func New(cfg Config, t tree.Tree, plugins *plugin.Registry) *Server {
	if cfg.BaseURI == "" {
		cfg.BaseURI = "/"
	}
	if cfg.BaseURI[len(cfg.BaseURI)-1] != '/' {
		cfg.BaseURI += "/"
	}
	if plugins == nil {
		plugins = &plugin.Registry{}
	}

	bus := &events.Bus{}
	plugins.SubscribeAll(bus)

	return &Server{
		cfg:     cfg,
		tree:    t,
		events:  bus,
		plugins: plugins,
		tracer:  otel.Tracer("github.com/opencloud-eu/davcore/internal/webdav"),
	}
}

// Mux returns an http.Handler with every WebDAV verb this core implements
// routed through the dispatcher. The returned chi.Mux is the outer HTTP
// entry point; it knows nothing about WebDAV semantics beyond method
// dispatch, matching the way a production mount point fronts this kind of
// handler set.
func (s *Server) Mux() *chi.Mux {
	r := chi.NewRouter()
	r.Method(http.MethodOptions, "/*", s.wrap(s.handleOptions, "options"))
	r.Method(http.MethodGet, "/*", s.wrap(s.handleGet, "get"))
	r.Method(http.MethodHead, "/*", s.wrap(s.handleHead, "head"))
	r.Method(http.MethodPut, "/*", s.wrap(s.handlePut, "put"))
	r.Method(http.MethodDelete, "/*", s.wrap(s.handleDelete, "delete"))
	r.Method("MKCOL", "/*", s.wrap(s.handleMkcol, "mkcol"))
	r.Method("COPY", "/*", s.wrap(s.handleCopy, "copy"))
	r.Method("MOVE", "/*", s.wrap(s.handleMove, "move"))
	r.Method("PROPFIND", "/*", s.wrap(s.handlePropfind, "propfind"))
	r.Method("PROPPATCH", "/*", s.wrap(s.handleProppatch, "proppatch"))
	r.Method("REPORT", "/*", s.wrap(s.handleReport, "report"))
	r.MethodNotAllowed(s.wrap(s.handleUnknownMethod, "unknown"))
	return r
}
