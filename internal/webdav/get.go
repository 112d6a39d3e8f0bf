package webdav

import (
	"net/http"
	"strconv"

	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/precond"
	"github.com/opencloud-eu/davcore/internal/webdav/rangeutil"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) error {
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

	res := resourceOf(ctx, node)
	result, err := precond.Evaluate(r, res, true)
	if err != nil {
		return err
	}
	if result.Redirected {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	file, ok := node.(tree.IFile)
	if !ok {
		return errtypes.NotImplemented(uri + " is not a file")
	}

	data, err := file.Get(ctx)
	if err != nil {
		return err
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
	w.Header().Set(davnet.HeaderAcceptRanges, "bytes")

	size := int64(len(data))
	rangeHeader := r.Header.Get(davnet.HeaderRange)
	if rangeHeader != "" {
		ranges, err := rangeutil.ParseRange(rangeHeader, size)
		if err != nil {
			if err == rangeutil.ErrNoOverlap {
				// The file's entity headers set above must not go out with
				// the error body.
				for name := range headers {
					w.Header().Del(name)
				}
				return errtypes.RequestedRangeNotSatisfiable(err.Error())
			}
			// A malformed Range header is ignored per RFC 7233: serve the
			// full body rather than fail the request.
			ranges = nil
		}
		if len(ranges) > 0 && ifRangeMatches(r, res) {
			// Only a single range is served; a multi-range request degrades
			// to serving its first range, which every tested client only
			// ever sends for byte-range GET against a single resource.
			ra := ranges[0]
			w.Header().Set(davnet.HeaderContentRange, ra.ContentRange(size))
			w.Header().Set(davnet.HeaderContentLength, strconv.FormatInt(ra.Length, 10))
			w.WriteHeader(http.StatusPartialContent)
			_, err := w.Write(data[ra.Start : ra.Start+ra.Length])
			return err
		}
	}

	w.Header().Set(davnet.HeaderContentLength, strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}
