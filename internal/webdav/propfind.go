package webdav

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/opencloud-eu/davcore/internal/webdav/dom"
	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/props"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

func (s *Server) handlePropfind(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}
	if _, exists, err := s.lookup(ctx, uri); err != nil {
		return err
	} else if !exists {
		return errtypes.NotFound(uri)
	}

	pf, err := dom.ParsePropfind(r.Body)
	if err != nil {
		return errtypes.BadRequest(err.Error())
	}

	depth := parseDepth(r.Header.Get(davnet.HeaderDepth))

	responses, err := s.getPropertiesForPath(ctx, uri, pf, depth)
	if err != nil {
		return err
	}

	w.Header().Set(davnet.HeaderContentType, "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	return dom.WriteMultiStatus(w, responses, statusLine)
}

// parseDepth clamps the Depth header to {0, 1}: the core does not support
// DEPTH_INFINITY (spec §4.3). A missing, empty, or "infinity" header falls
// back to 1, matching the conventional PROPFIND default before clamping.
func parseDepth(header string) int {
	if header == "0" {
		return 0
	}
	return 1
}

// getPropertiesForPath implements spec §4.8 over the target node and, for
// depth 1, its direct children.
func (s *Server) getPropertiesForPath(ctx context.Context, path string, pf dom.Propfind, depth int) ([]dom.Response, error) {
	node, _, err := s.lookup(ctx, path)
	if err != nil {
		return nil, err
	}

	type target struct {
		uri  string
		node tree.Node
	}
	targets := []target{{uri: path, node: node}}

	if depth == 1 {
		if coll, ok := node.(tree.ICollection); ok {
			children, err := coll.Children(ctx)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				targets = append(targets, target{uri: davnet.JoinPath(path, child.Name()), node: child})
			}
		}
	}

	responses := make([]dom.Response, 0, len(targets))
	for _, t := range targets {
		resp, err := s.propertiesForNode(ctx, t.uri, t.node, pf)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Server) propertiesForNode(ctx context.Context, uri string, node tree.Node, pf dom.Propfind) (dom.Response, error) {
	var declared map[string]any
	if ip, ok := node.(tree.IProperties); ok {
		var err error
		if pf.Allprop || pf.Propname {
			declared, err = ip.GetProperties(ctx, nil)
		} else {
			declared, err = ip.GetProperties(ctx, pf.Names)
		}
		if err != nil {
			return dom.Response{}, err
		}
	}

	var names []string
	switch {
	case pf.Allprop, pf.Propname:
		names = unionNames(props.DefaultNames, declared)
	default:
		names = append([]string{}, pf.Names...)
	}

	removeResourceType := !containsName(names, props.ResourceType)
	if removeResourceType {
		names = append(names, props.ResourceType)
	}

	ok200 := map[string]string{}
	ok404 := map[string]bool{}
	for _, name := range names {
		if v, has := declared[name]; has {
			ok200[name] = toPropertyText(v)
			continue
		}
		value, ok, err := props.Resolve(ctx, node, name)
		if err != nil {
			return dom.Response{}, err
		}
		if !ok {
			ok404[name] = true
			continue
		}
		if name == props.ResourceType {
			ok200[name] = value // already markup, e.g. "<d:collection/>"
		} else {
			ok200[name] = dom.EscapeText(value)
		}
	}

	if _, err := s.events.Emit(ctx, events.AfterGetProperties, uri, ok200, ok404); err != nil {
		return dom.Response{}, err
	}

	isCollection := props.IsCollection(ok200[props.ResourceType])
	if removeResourceType {
		delete(ok200, props.ResourceType)
	}

	resp := dom.Response{Href: s.hrefFor(uri, isCollection)}

	if pf.Propname {
		ps := dom.Propstat{Status: http.StatusOK}
		for _, name := range sortedKeys(ok200) {
			ps.Props = append(ps.Props, dom.Property{Name: name})
		}
		resp.Propstat = append(resp.Propstat, ps)
		return resp, nil
	}

	if len(ok200) > 0 {
		ps := dom.Propstat{Status: http.StatusOK}
		for _, name := range sortedKeys(ok200) {
			ps.Props = append(ps.Props, dom.Property{Name: name, Value: ok200[name]})
		}
		resp.Propstat = append(resp.Propstat, ps)
	}
	if len(ok404) > 0 {
		ps := dom.Propstat{Status: http.StatusNotFound}
		names := make([]string, 0, len(ok404))
		for name := range ok404 {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ps.Props = append(ps.Props, dom.Property{Name: name})
		}
		resp.Propstat = append(resp.Propstat, ps)
	}
	return resp, nil
}

func unionNames(base []string, declared map[string]any) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(base)+len(declared))
	for _, n := range base {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for n := range declared {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toPropertyText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
