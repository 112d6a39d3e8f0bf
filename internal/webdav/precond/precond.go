// Package precond evaluates HTTP conditional-request headers against a
// resource's current ETag and modification time, per RFC 7232 as narrowed by
// spec §4.4: first failure short-circuits the rest.
package precond

import (
	"net/http"
	"strings"
	"time"

	"github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// Resource is the subset of a node's identity the evaluator needs. Exists
// is false when the request targets a path with no current node (e.g. PUT
// creating a new file).
type Resource struct {
	Exists       bool
	ETag         string
	LastModified time.Time
}

// Result is the evaluator's verdict.
type Result struct {
	// Redirected is true on an If-None-Match/If-Modified-Since short-circuit
	// for a GET/HEAD request: the caller must write 304 and stop, this is
	// not an error.
	Redirected bool
}

// Evaluate runs the precondition chain from spec §4.4 against r for the
// given request. handleAsGET distinguishes GET/HEAD semantics (304 on
// If-None-Match/If-Modified-Since failure) from every other method (412 on
// If-None-Match failure; If-Modified-Since is not evaluated).
func Evaluate(req *http.Request, r Resource, handleAsGET bool) (Result, error) {
	ifMatch := req.Header.Get(net.HeaderIfMatch)
	ifNoneMatch := req.Header.Get(net.HeaderIfNoneMatch)
	ifModifiedSince := req.Header.Get(net.HeaderIfModifiedSince)
	ifUnmodifiedSince := req.Header.Get(net.HeaderIfUnmodifiedSince)

	if ifMatch != "" {
		if !r.Exists {
			return Result{}, errtypes.PreconditionFailed("If-Match: resource does not exist")
		}
		if ifMatch != "*" && !matchesETag(ifMatch, r.ETag) {
			return Result{}, errtypes.PreconditionFailed("If-Match: no matching ETag")
		}
	}

	if ifNoneMatch != "" {
		fails := false
		if !r.Exists {
			fails = false
		} else if ifNoneMatch == "*" {
			fails = true
		} else if matchesETag(ifNoneMatch, r.ETag) {
			fails = true
		}
		if fails {
			if handleAsGET {
				return Result{Redirected: true}, nil
			}
			return Result{}, errtypes.PreconditionFailed("If-None-Match: ETag matched")
		}
	} else if ifModifiedSince != "" && handleAsGET {
		since, err := http.ParseTime(ifModifiedSince)
		if err == nil && !r.LastModified.After(since) {
			return Result{Redirected: true}, nil
		}
	}

	if ifUnmodifiedSince != "" {
		since, err := http.ParseTime(ifUnmodifiedSince)
		if err != nil {
			return Result{}, errtypes.PreconditionFailed("If-Unmodified-Since: malformed date")
		}
		if r.LastModified.After(since) {
			return Result{}, errtypes.PreconditionFailed("If-Unmodified-Since: resource modified")
		}
	}

	return Result{}, nil
}

// matchesETag reports whether header (a comma-separated If-Match/
// If-None-Match value list, already known not to be "*") contains an entry
// equal to etag, ignoring surrounding quotes and the weak-comparison prefix.
func matchesETag(header, etag string) bool {
	want := unquote(etag)
	for _, part := range strings.Split(header, ",") {
		if unquote(strings.TrimSpace(part)) == want {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, "W/")
	return strings.Trim(s, `"`)
}
