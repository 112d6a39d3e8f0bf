package webdav

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/opencloud-eu/davcore/internal/webdav/dom"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

func (s *Server) handleMkcol(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errtypes.BadRequest(err.Error())
	}

	resourceTypes := []string{davnet.Clark(davnet.NsDav, "collection")}
	properties := map[string]string{}

	if len(body) > 0 {
		if !isXMLContentType(r.Header.Get(davnet.HeaderContentType)) {
			return errtypes.UnsupportedMediaType("MKCOL body must be application/xml or text/xml")
		}
		parsed, err := dom.ParseMkcol(bytes.NewReader(body))
		if err != nil {
			return errtypes.BadRequest(err.Error())
		}
		resourceTypes = parsed.ResourceTypes
		properties = parsed.Properties
	}

	if _, err := s.createCollection(ctx, uri, resourceTypes, properties); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func isXMLContentType(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(ct)
	return ct == "application/xml" || ct == "text/xml"
}
