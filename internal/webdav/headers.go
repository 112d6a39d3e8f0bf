package webdav

import (
	"context"

	"github.com/opencloud-eu/davcore/internal/webdav/props"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
)

// getHTTPHeaders fetches the live properties that double as HTTP response
// headers for node and maps them to their header names (spec §4.5). A
// property the node's capabilities cannot answer is simply omitted.
func getHTTPHeaders(ctx context.Context, node tree.Node) (map[string]string, error) {
	mapping := []struct {
		clark  string
		header string
	}{
		{props.GetContentType, "Content-Type"},
		{props.GetContentLength, "Content-Length"},
		{props.GetLastModified, "Last-Modified"},
		{props.GetETag, "ETag"},
	}

	headers := map[string]string{}
	for _, m := range mapping {
		value, ok, err := props.Resolve(ctx, node, m.clark)
		if err != nil {
			return nil, err
		}
		if ok {
			headers[m.header] = value
		}
	}
	return headers, nil
}
