package webdav

import (
	"context"
	"net/http"

	"github.com/opencloud-eu/davcore/internal/webdav/dom"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/props"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// propertyOp is one mutation as updateProperties consumes it: a set, or a
// removal when Remove is true. PROPPATCH passes its parsed body's operations
// through unchanged; createCollection builds set-only operations from its
// initial properties via propertyOpsFromMap.
type propertyOp = dom.PropertyOp

func propertyOpsFromMap(properties map[string]string) []propertyOp {
	ops := make([]propertyOp, 0, len(properties))
	for name, value := range properties {
		ops = append(ops, propertyOp{Name: name, Value: value})
	}
	return ops
}

// propertyUpdateResult buckets every requested property name by the HTTP
// status it landed at, per spec §4.9.
type propertyUpdateResult struct {
	ByStatus map[int][]string
}

func (r propertyUpdateResult) success() bool {
	for status := range r.ByStatus {
		if status != http.StatusOK {
			return false
		}
	}
	return true
}

// updateProperties implements spec §4.9: a non-IProperties node fails every
// property with 403; any protected property among the requested ops fails
// that name with 403 and leaves the rest unattempted (424); otherwise the
// node's own UpdateProperties return shape is translated verbatim, with any
// name it didn't account for defaulting to 424 (Failed Dependency).
func (s *Server) updateProperties(ctx context.Context, uri string, ops []propertyOp) (propertyUpdateResult, error) {
	node, exists, err := s.lookup(ctx, uri)
	if err != nil {
		return propertyUpdateResult{}, err
	}
	if !exists {
		return propertyUpdateResult{}, errtypes.NotFound(uri)
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	byStatus := map[int][]string{}

	propsNode, isProps := node.(tree.IProperties)
	if !isProps {
		byStatus[http.StatusForbidden] = names
		return propertyUpdateResult{ByStatus: byStatus}, nil
	}

	var forbidden []string
	for _, op := range ops {
		if props.IsProtected(op.Name) {
			forbidden = append(forbidden, op.Name)
		}
	}
	if len(forbidden) > 0 {
		byStatus[http.StatusForbidden] = forbidden
		forbiddenSet := toSet(forbidden)
		var rest []string
		for _, n := range names {
			if !forbiddenSet[n] {
				rest = append(rest, n)
			}
		}
		if len(rest) > 0 {
			byStatus[http.StatusFailedDependency] = rest
		}
		return propertyUpdateResult{ByStatus: byStatus}, nil
	}

	mutation := make(map[string]any, len(ops))
	for _, op := range ops {
		if op.Remove {
			mutation[op.Name] = nil
		} else {
			mutation[op.Name] = op.Value
		}
	}

	result, err := propsNode.UpdateProperties(ctx, mutation)
	if err != nil {
		return propertyUpdateResult{}, err
	}

	switch {
	case result.AllOK:
		byStatus[http.StatusOK] = names
	case result.AllForbidden:
		byStatus[http.StatusForbidden] = names
	default:
		attempted := map[string]bool{}
		for status, ns := range result.ByStatus {
			byStatus[status] = append(byStatus[status], ns...)
			for _, n := range ns {
				attempted[n] = true
			}
		}
		var unattempted []string
		for _, n := range names {
			if !attempted[n] {
				unattempted = append(unattempted, n)
			}
		}
		if len(unattempted) > 0 {
			byStatus[http.StatusFailedDependency] = append(byStatus[http.StatusFailedDependency], unattempted...)
		}
	}
	return propertyUpdateResult{ByStatus: byStatus}, nil
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func (s *Server) handleProppatch(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	ops, err := dom.ParsePropertyUpdate(r.Body)
	if err != nil {
		return errtypes.BadRequest(err.Error())
	}

	result, err := s.updateProperties(ctx, uri, ops)
	if err != nil {
		return err
	}

	node, _, err := s.lookup(ctx, uri)
	if err != nil {
		return err
	}
	_, isCollection := node.(tree.ICollection)

	resp := dom.Response{Href: s.hrefFor(uri, isCollection)}
	for status, names := range result.ByStatus {
		if len(names) == 0 {
			continue
		}
		ps := dom.Propstat{Status: status}
		for _, name := range names {
			ps.Props = append(ps.Props, dom.Property{Name: name})
		}
		resp.Propstat = append(resp.Propstat, ps)
	}

	w.Header().Set(davnet.HeaderContentType, "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	return dom.WriteMultiStatus(w, []dom.Response{resp}, statusLine)
}
